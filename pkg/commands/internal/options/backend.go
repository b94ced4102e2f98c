package options

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wuxler/rregistry/pkg/cmdhelper"
	"github.com/wuxler/rregistry/pkg/kvstore"
	"github.com/wuxler/rregistry/pkg/kvstore/memory"
	"github.com/wuxler/rregistry/pkg/kvstore/redis"
	"github.com/wuxler/rregistry/pkg/xlog"
)

const (
	// BackendFlagCategory is the category of the storage backend flags.
	BackendFlagCategory = "[Backend]"

	// BackendRedis stores manifests in Redis.
	BackendRedis = "redis"
	// BackendMemory stores manifests in process memory, lost on exit.
	BackendMemory = "memory"

	// DefaultRedisURL is the Redis server used when none is configured.
	DefaultRedisURL = "redis://127.0.0.1:6379/0"
)

// NewBackendOptions returns a *BackendOptions with default values.
func NewBackendOptions() *BackendOptions {
	return &BackendOptions{
		Backend:          BackendRedis,
		RedisURL:         DefaultRedisURL,
		RedisDialTimeout: 5 * time.Second,
	}
}

// BackendOptions selects and configures the key-value backend.
type BackendOptions struct {
	Backend          string
	RedisURL         string
	RedisPoolSize    int64
	RedisDialTimeout time.Duration
	RedisCAFiles     []string
	RedisInsecure    bool
}

// Flags returns the []cli.Flag related to current options.
func (o *BackendOptions) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       `storage backend, oneof ["redis", "memory"]`,
			Sources:     cli.EnvVars("RREGISTRY_BACKEND"),
			Value:       o.Backend,
			Destination: &o.Backend,
			Category:    BackendFlagCategory,
			Validator: func(s string) error {
				if s != BackendRedis && s != BackendMemory {
					return fmt.Errorf("unsupported backend %q", s)
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "redis connection string",
			Sources:     cli.EnvVars("RREGISTRY_REDIS_URL", "REDIS_CONNECTION_STRING"),
			Value:       o.RedisURL,
			Destination: &o.RedisURL,
			Category:    BackendFlagCategory,
		},
		&cli.IntFlag{
			Name:        "redis-pool-size",
			Usage:       "maximum number of redis connections, 0 means 10 per CPU",
			Sources:     cli.EnvVars("RREGISTRY_REDIS_POOL_SIZE"),
			Value:       o.RedisPoolSize,
			Destination: &o.RedisPoolSize,
			Category:    BackendFlagCategory,
		},
		&cli.DurationFlag{
			Name:        "redis-dial-timeout",
			Usage:       "timeout for establishing redis connections",
			Sources:     cli.EnvVars("RREGISTRY_REDIS_DIAL_TIMEOUT"),
			Value:       o.RedisDialTimeout,
			Destination: &o.RedisDialTimeout,
			Category:    BackendFlagCategory,
		},
		&cli.StringSliceFlag{
			Name:        "redis-ca-files",
			Usage:       "CA files to verify the redis server certificate, enables TLS",
			Sources:     cli.EnvVars("RREGISTRY_REDIS_CA_FILES"),
			Value:       o.RedisCAFiles,
			Destination: &o.RedisCAFiles,
			Category:    BackendFlagCategory,
		},
		&cli.BoolFlag{
			Name:        "redis-insecure",
			Usage:       "enable TLS and skip verifying the redis server certificate",
			Sources:     cli.EnvVars("RREGISTRY_REDIS_INSECURE"),
			Value:       o.RedisInsecure,
			Destination: &o.RedisInsecure,
			Category:    BackendFlagCategory,
		},
	}
}

// Open connects to the configured backend. The returned closer releases it.
func (o *BackendOptions) Open(ctx context.Context) (kvstore.Backend, io.Closer, error) {
	switch o.Backend {
	case BackendMemory:
		xlog.C(ctx).Warn("using the memory backend, manifests are lost on exit")
		return memory.New(), io.NopCloser(nil), nil
	case BackendRedis:
		tlsConfig, err := o.tlsConfig()
		if err != nil {
			return nil, nil, err
		}
		store, err := redis.Open(ctx, redis.Options{
			URL:         o.RedisURL,
			PoolSize:    int(o.RedisPoolSize),
			DialTimeout: o.RedisDialTimeout,
			TLSConfig:   tlsConfig,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", o.Backend)
	}
}

func (o *BackendOptions) tlsConfig() (*tls.Config, error) {
	if !o.RedisInsecure && len(o.RedisCAFiles) == 0 {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.RedisInsecure, //nolint:gosec // explicit skip verify
	}
	if len(o.RedisCAFiles) > 0 {
		files := make([]string, 0, len(o.RedisCAFiles))
		for _, f := range o.RedisCAFiles {
			expanded, err := cmdhelper.ExpandHome(f)
			if err != nil {
				return nil, err
			}
			files = append(files, expanded)
		}
		pool, err := cmdhelper.LoadTLSCertFiles(files...)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}
