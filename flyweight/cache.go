package flyweight

import (
	"iter"

	"go.uber.org/atomic"

	"github.com/goliatone/go-flyweight/internal/interninfra"
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Collisions uint64
	Size       int
}

// InterningCache guarantees one Flyweight per distinct canonical key.
//
// Entries are created on demand, never updated or evicted, and live as long
// as the cache. All methods are safe for concurrent use.
type InterningCache struct {
	deriver  KeyDeriver
	renderer Renderer
	store    *interninfra.Store[*Flyweight]

	hits       atomic.Uint64
	misses     atomic.Uint64
	collisions atomic.Uint64
}

// NewInterningCache validates cfg and returns an empty cache.
func NewInterningCache(cfg Config) (*InterningCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := interninfra.NewStore[*Flyweight](cfg.toInternal())
	if err != nil {
		return nil, err
	}

	return &InterningCache{
		deriver:  cfg.keyDeriver(),
		renderer: cfg.renderer(),
		store:    store,
	}, nil
}

// KeyDeriver returns the deriver used to key entries.
func (c *InterningCache) KeyDeriver() KeyDeriver {
	return c.deriver
}

// Preload inserts a Flyweight for every state whose key is absent.
// Preloading a state twice leaves a single entry. It stops at the first
// invalid state or key collision and returns that error.
func (c *InterningCache) Preload(states ...SharedState) error {
	for _, state := range states {
		if _, _, err := c.GetOrCreate(state); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreate returns the Flyweight registered for the key of state,
// creating it when absent. created is true only for the call that performed
// the creation, even when many goroutines race on the same key.
//
// A key already bound to a structurally different state yields a
// KeyCollisionMismatch error and no Flyweight.
func (c *InterningCache) GetOrCreate(state SharedState) (fw *Flyweight, created bool, err error) {
	key, err := c.deriver.Derive(state)
	if err != nil {
		return nil, false, err
	}

	fw, created = c.store.LoadOrCreate(string(key), func(seq int) *Flyweight {
		return &Flyweight{
			key:      key,
			state:    state,
			renderer: c.renderer,
			seq:      seq,
		}
	})
	if created {
		c.misses.Inc()
		return fw, true, nil
	}

	if !c.deriver.Equivalent(fw.state, state) {
		c.collisions.Inc()
		return nil, false, keyCollisionMismatch(key, fw.state, state)
	}

	c.hits.Inc()
	return fw, false, nil
}

// Lookup returns the Flyweight for state without creating one.
func (c *InterningCache) Lookup(state SharedState) (*Flyweight, bool, error) {
	key, err := c.deriver.Derive(state)
	if err != nil {
		return nil, false, err
	}

	fw, ok := c.store.Load(string(key))
	if !ok {
		return nil, false, nil
	}
	if !c.deriver.Equivalent(fw.state, state) {
		return nil, false, keyCollisionMismatch(key, fw.state, state)
	}
	return fw, true, nil
}

// Size returns the number of distinct entries. It never decreases.
func (c *InterningCache) Size() int {
	return c.store.Len()
}

// ListEntries returns the entries present at call time, in insertion order.
// The sequence can be ranged over any number of times and always yields the
// same snapshot.
func (c *InterningCache) ListEntries() iter.Seq2[Key, SharedState] {
	snapshot := c.store.Snapshot()
	return func(yield func(Key, SharedState) bool) {
		for _, fw := range snapshot {
			if !yield(fw.key, fw.state) {
				return
			}
		}
	}
}

// Flyweights returns the Flyweights present at call time, in insertion order.
func (c *InterningCache) Flyweights() iter.Seq[*Flyweight] {
	snapshot := c.store.Snapshot()
	return func(yield func(*Flyweight) bool) {
		for _, fw := range snapshot {
			if !yield(fw) {
				return
			}
		}
	}
}

// Stats returns hit, miss and collision counters alongside the current size.
func (c *InterningCache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Collisions: c.collisions.Load(),
		Size:       c.Size(),
	}
}
