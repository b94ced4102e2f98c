// Package memory provides an in-process kvstore.Backend, used by tests and by
// the registry when started with the memory backend.
package memory

import (
	"context"
	"maps"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"

	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/kvstore"
)

var _ kvstore.Backend = (*Store)(nil)

// entry holds either a plain value or a set. Sets are never mutated in place,
// updates always swap in a new map inside Compute.
type entry struct {
	value []byte
	set   map[string]struct{}
}

func (e entry) isSet() bool {
	return e.set != nil
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: xsync.NewMapOf[string, entry]()}
}

// Store is a kvstore.Backend kept in memory. Each method is atomic per key,
// mirroring the guarantees of a single Redis command.
type Store struct {
	entries *xsync.MapOf[string, entry]
}

func wrongType(key string) error {
	return errdefs.Newf(errdefs.ErrConflict, "WRONGTYPE operation against key %q holding the wrong kind of value", key)
}

// Get returns the value of key, or nil if key is missing.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.entries.Load(key)
	if !ok {
		return nil, nil
	}
	if e.isSet() {
		return nil, wrongType(key)
	}
	return slices.Clone(e.value), nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	v := slices.Clone(value)
	if v == nil {
		v = []byte{}
	}
	s.entries.Store(key, entry{value: v})
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.entries.Load(key)
	return ok, nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) (int64, error) {
	if _, ok := s.entries.LoadAndDelete(key); ok {
		return 1, nil
	}
	return 0, nil
}

// GetAndDelete atomically fetches and removes the value of key.
func (s *Store) GetAndDelete(_ context.Context, key string) ([]byte, error) {
	var (
		value []byte
		err   error
	)
	s.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if !loaded {
			return old, true
		}
		if old.isSet() {
			err = wrongType(key)
			return old, false
		}
		value = old.value
		return old, true
	})
	return value, err
}

// SetMembers returns the members of the set at key in lexical order.
func (s *Store) SetMembers(_ context.Context, key string) ([]string, error) {
	e, ok := s.entries.Load(key)
	if !ok {
		return []string{}, nil
	}
	if !e.isSet() {
		return nil, wrongType(key)
	}
	members := lo.Keys(e.set)
	slices.Sort(members)
	return members, nil
}

// SetAdd adds member to the set at key.
func (s *Store) SetAdd(_ context.Context, key string, member string) error {
	var err error
	s.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded && !old.isSet() {
			err = wrongType(key)
			return old, false
		}
		set := make(map[string]struct{}, len(old.set)+1)
		maps.Copy(set, old.set)
		set[member] = struct{}{}
		return entry{set: set}, false
	})
	return err
}

// SetRemove removes member from the set at key, dropping the key once the set is empty.
func (s *Store) SetRemove(_ context.Context, key string, member string) (int64, error) {
	var (
		removed int64
		err     error
	)
	s.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if !loaded {
			return old, true
		}
		if !old.isSet() {
			err = wrongType(key)
			return old, false
		}
		if _, ok := old.set[member]; !ok {
			return old, false
		}
		removed = 1
		set := maps.Clone(old.set)
		delete(set, member)
		return entry{set: set}, len(set) == 0
	})
	return removed, err
}

// Keys returns every key currently stored, in lexical order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.entries.Size())
	s.entries.Range(func(key string, _ entry) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys
}
