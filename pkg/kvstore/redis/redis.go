// Package redis adapts a pooled Redis client to kvstore.Backend.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/kvstore"
	"github.com/wuxler/rregistry/pkg/xlog"
)

var _ kvstore.Backend = (*Store)(nil)

// Options configures the connection pool.
type Options struct {
	// URL is the connection string, e.g. "redis://localhost:6379/0".
	URL string
	// PoolSize is the maximum number of socket connections, 0 keeps the client default.
	PoolSize int
	// DialTimeout bounds establishing new connections, 0 keeps the client default.
	DialTimeout time.Duration
	// TLSConfig enables TLS with custom settings, "rediss://" URLs enable TLS
	// with the system defaults.
	TLSConfig *tls.Config
}

// Open parses the options, creates the pooled client and checks the server answers.
func Open(ctx context.Context, o Options) (*Store, error) {
	opts, err := goredis.ParseURL(o.URL)
	if err != nil {
		return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "invalid redis url: %v", err)
	}
	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		opts.DialTimeout = o.DialTimeout
	}
	if o.TLSConfig != nil {
		tlsConfig := o.TLSConfig.Clone()
		if tlsConfig.ServerName == "" && opts.TLSConfig != nil {
			tlsConfig.ServerName = opts.TLSConfig.ServerName
		}
		opts.TLSConfig = tlsConfig
	}
	client := goredis.NewClient(opts)
	s := New(client)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close() //nolint:errcheck
		return nil, err
	}
	xlog.C(ctx).Debug("connected to redis", "addr", opts.Addr, "db", opts.DB, "pool_size", opts.PoolSize)
	return s, nil
}

// New wraps an existing client. The client is shared by all callers and is safe
// for concurrent use.
func New(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

// Store is a kvstore.Backend issuing one Redis command per method.
type Store struct {
	client goredis.UniversalClient
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrapError(s.client.Ping(ctx).Err())
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get implements kvstore.Backend with GET.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err)
	}
	return value, nil
}

// Set implements kvstore.Backend with SET, without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return wrapError(s.client.Set(ctx, key, value, 0).Err())
}

// Exists implements kvstore.Backend with EXISTS.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, wrapError(err)
	}
	return n > 0, nil
}

// Delete implements kvstore.Backend with DEL.
func (s *Store) Delete(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Del(ctx, key).Result()
	return n, wrapError(err)
}

// GetAndDelete implements kvstore.Backend with GETDEL (Redis >= 6.2).
func (s *Store) GetAndDelete(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err)
	}
	return value, nil
}

// SetMembers implements kvstore.Backend with SMEMBERS.
func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrapError(err)
	}
	return members, nil
}

// SetAdd implements kvstore.Backend with SADD.
func (s *Store) SetAdd(ctx context.Context, key string, member string) error {
	return wrapError(s.client.SAdd(ctx, key, member).Err())
}

// SetRemove implements kvstore.Backend with SREM.
func (s *Store) SetRemove(ctx context.Context, key string, member string) (int64, error) {
	n, err := s.client.SRem(ctx, key, member).Result()
	return n, wrapError(err)
}

// wrongTypePrefix starts the reply to an operation on a key holding another type.
const wrongTypePrefix = "WRONGTYPE"

// wrapError classifies client errors: a WRONGTYPE reply is a conflict, any other
// reply (LOADING, MASTERDOWN, READONLY, ...) or transport failure means the
// server cannot serve the request.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var replyErr goredis.Error
	if errors.As(err, &replyErr) && strings.HasPrefix(replyErr.Error(), wrongTypePrefix) {
		return errdefs.NewE(errdefs.ErrConflict, fmt.Errorf("redis: %w", err))
	}
	return errdefs.NewE(errdefs.ErrUnavailable, fmt.Errorf("redis: %w", err))
}
