package flyweight

// ExtrinsicState is the per-entity data supplied to a Flyweight at call time.
// A Flyweight never stores it.
type ExtrinsicState []any

// Flyweight pairs one SharedState with a rendering operation. It is created
// by an InterningCache, never mutated afterwards, and safe to share between
// goroutines. A zero Flyweight renders with JSONRenderer.
type Flyweight struct {
	key      Key
	state    SharedState
	renderer Renderer
	seq      int
}

// Key returns the canonical key the Flyweight is registered under.
func (f *Flyweight) Key() Key {
	return f.key
}

// SharedState returns the intrinsic state held by the Flyweight.
func (f *Flyweight) SharedState() SharedState {
	return f.state
}

// Seq returns the insertion position of the Flyweight in its cache.
func (f *Flyweight) Seq() int {
	return f.seq
}

// Operation renders the shared state together with extrinsic.
// Empty extrinsic state, or state the renderer cannot encode, yields an
// InvalidExtrinsicState error.
func (f *Flyweight) Operation(extrinsic ExtrinsicState) (Output, error) {
	if len(extrinsic) == 0 {
		return nil, invalidExtrinsicState(nil, "extrinsic state must contain at least one value")
	}

	renderer := f.renderer
	if renderer == nil {
		renderer = JSONRenderer{}
	}

	out, err := renderer.Render(f.state, extrinsic)
	if err != nil {
		if IsInvalidExtrinsicState(err) {
			return nil, err
		}
		return nil, invalidExtrinsicState(err, "extrinsic state cannot be rendered")
	}
	return out, nil
}
