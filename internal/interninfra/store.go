package interninfra

import (
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Config holds the configuration for the interning store.
type Config struct {
	// InitialCapacity pre-sizes the entry table and the ordered log.
	// Zero uses the xsync defaults. Must be non-negative.
	InitialCapacity int
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: 64,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.InitialCapacity < 0 {
		return &ConfigError{Field: "InitialCapacity", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Store is an append-only concurrent map from string keys to values.
//
// Lookups and inserts go through an xsync.MapOf so that the create callback
// passed to LoadOrCreate runs at most once per key. Every created value is
// also appended to an ordered log, which backs Len and Snapshot. Entries are
// never updated or removed.
type Store[V any] struct {
	entries *xsync.MapOf[string, V]

	mu  sync.RWMutex
	log []V
}

// NewStore validates cfg and returns an empty store.
func NewStore[V any](cfg Config) (*Store[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var entries *xsync.MapOf[string, V]
	if cfg.InitialCapacity > 0 {
		entries = xsync.NewMapOfPresized[string, V](cfg.InitialCapacity)
	} else {
		entries = xsync.NewMapOf[string, V]()
	}

	return &Store[V]{
		entries: entries,
		log:     make([]V, 0, cfg.InitialCapacity),
	}, nil
}

// LoadOrCreate returns the value stored under key. When the key is absent,
// create is invoked exactly once with the insertion sequence number and its
// result is published to every concurrent caller. The boolean reports whether
// this call performed the creation.
//
// create runs while the key's bucket is locked; it must not call back into
// the store.
func (s *Store[V]) LoadOrCreate(key string, create func(seq int) V) (V, bool) {
	if v, ok := s.entries.Load(key); ok {
		return v, false
	}

	v, loaded := s.entries.LoadOrCompute(key, func() V {
		s.mu.Lock()
		defer s.mu.Unlock()

		v := create(len(s.log))
		s.log = append(s.log, v)
		return v
	})
	return v, !loaded
}

// Load returns the value stored under key, if any.
func (s *Store[V]) Load(key string) (V, bool) {
	return s.entries.Load(key)
}

// Len returns the number of values created so far.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Snapshot returns the created values in insertion order.
// The returned slice is owned by the caller.
func (s *Store[V]) Snapshot() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.log)
}
