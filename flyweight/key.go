package flyweight

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultKeySeparator is the delimiter placed between rendered field values.
const DefaultKeySeparator = "_"

// Key is the canonical identifier of a SharedState inside an InterningCache.
type Key string

func (k Key) String() string {
	return string(k)
}

// Fingerprint returns a 64-bit xxhash of the key, handy as a compact
// identifier in logs and listings.
func (k Key) Fingerprint() uint64 {
	return xxhash.Sum64String(string(k))
}

// KeyDeriver maps a SharedState to its canonical key.
//
// Derive must be pure and deterministic. Equivalent defines the structural
// equality that Derive is meant to respect: whenever Equivalent(a, b) holds,
// Derive(a) == Derive(b). The cache uses Equivalent to detect two different
// states landing on the same key.
type KeyDeriver interface {
	Derive(state SharedState) (Key, error)
	Equivalent(a, b SharedState) bool
}

// defaultKeyDeriver joins rendered field values with a fixed separator.
// Field order is preserved unless normalizeFieldOrder is set and every field
// is named, in which case fields are ordered by name first.
type defaultKeyDeriver struct {
	separator           string
	normalizeFieldOrder bool
}

// NewDefaultKeyDeriver returns an order-sensitive deriver using DefaultKeySeparator.
func NewDefaultKeyDeriver() KeyDeriver {
	return NewKeyDeriver(DefaultKeySeparator, false)
}

// NewKeyDeriver returns a deriver joining values with separator. An empty
// separator falls back to DefaultKeySeparator.
func NewKeyDeriver(separator string, normalizeFieldOrder bool) KeyDeriver {
	if separator == "" {
		separator = DefaultKeySeparator
	}
	return &defaultKeyDeriver{
		separator:           separator,
		normalizeFieldOrder: normalizeFieldOrder,
	}
}

// Derive builds the key for state.
func (d *defaultKeyDeriver) Derive(state SharedState) (Key, error) {
	if state.IsZero() {
		return "", invalidSharedState("shared state must contain at least one value")
	}
	return Key(strings.Join(d.parts(state), d.separator)), nil
}

// Equivalent compares the canonical field sequence of both states.
func (d *defaultKeyDeriver) Equivalent(a, b SharedState) bool {
	return slices.Equal(d.parts(a), d.parts(b))
}

func (d *defaultKeyDeriver) parts(state SharedState) []string {
	if !d.normalizeFieldOrder || !state.Named() {
		return state.Strings()
	}

	order := make([]int, state.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(state.fields[a].Name, state.fields[b].Name)
	})

	parts := make([]string, len(order))
	for i, idx := range order {
		parts[i] = state.rendered[idx]
	}
	return parts
}
