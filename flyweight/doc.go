// Package flyweight provides an interning cache for immutable shared state.
//
// # Overview
//
// Many entities often share the same combination of attributes: thousands of
// cars are a red BMW M5, thousands of glyphs use the same font and size. The
// package deduplicates those combinations so every entity referencing the
// same one reuses a single in-memory Flyweight, while data unique to each
// entity is passed in at call time and never stored.
//
// The package exports:
//
//   - SharedState: an immutable, ordered bundle of attribute values
//   - KeyDeriver: maps a SharedState to its canonical Key
//   - Flyweight: wraps one SharedState and renders it with extrinsic state
//   - InterningCache: guarantees one Flyweight per distinct Key
//
// # Basic Usage
//
//	cache, err := flyweight.NewInterningCache(flyweight.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	shared, err := flyweight.NewSharedState("BMW", "M5", "red")
//	if err != nil {
//		return err
//	}
//
//	fw, created, err := cache.GetOrCreate(shared)
//	if err != nil {
//		return err
//	}
//	out, err := fw.Operation(flyweight.ExtrinsicState{"CL234IR", "James Doe"})
//
// The created flag replaces logging inside the cache: callers decide whether
// a miss is worth reporting.
//
// # Key Derivation
//
// The default deriver renders each value with %v and joins them with
// DefaultKeySeparator in the order they were supplied, so
// ["BMW", "M5", "red"] becomes "BMW_M5_red". The same values in a different
// order produce a different key. Config.NormalizeFieldOrder orders fully
// named states by field name first; positional states are never reordered.
//
// Values that contain the separator can make two different states derive the
// same key. The cache detects this on lookup and returns an error for which
// IsKeyCollisionMismatch reports true instead of handing back the wrong
// Flyweight. Pick a separator that cannot appear in your values.
//
// # Concurrency
//
// GetOrCreate performs an atomic check-and-insert: when many goroutines ask
// for the same absent key, one of them creates the Flyweight and all of them
// receive the same pointer. Flyweight.Operation takes no locks.
//
// # Error Handling
//
// Errors are *errors.Error values from github.com/goliatone/go-errors. Use
// IsInvalidSharedState, IsInvalidExtrinsicState, IsKeyCollisionMismatch and
// IsInvalidConfig to branch on them. Validation errors are recoverable by the
// caller; a key collision means the deriver is defective.
package flyweight
