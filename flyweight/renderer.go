package flyweight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	errors "github.com/goliatone/go-errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Output is the result of rendering a Flyweight with extrinsic state.
type Output []byte

func (o Output) String() string {
	return string(o)
}

// Renderer combines a shared state with per-call extrinsic state.
// Implementations must not retain extrinsic after returning.
type Renderer interface {
	Render(shared SharedState, extrinsic ExtrinsicState) (Output, error)
}

// JSONRenderer produces a human readable line embedding both states as JSON.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(shared SharedState, extrinsic ExtrinsicState) (Output, error) {
	s, err := json.Marshal(shared)
	if err != nil {
		return nil, err
	}
	u, err := json.Marshal([]any(extrinsic))
	if err != nil {
		return nil, err
	}
	return Output(fmt.Sprintf("Flyweight: displaying shared (%s) and unique (%s) state.", s, u)), nil
}

// MsgpackRenderer encodes both states as a msgpack map with "shared" and
// "unique" entries. Map keys are sorted so output is deterministic.
type MsgpackRenderer struct{}

type msgpackPayload struct {
	Shared any   `msgpack:"shared"`
	Unique []any `msgpack:"unique"`
}

// Render implements Renderer.
func (MsgpackRenderer) Render(shared SharedState, extrinsic ExtrinsicState) (Output, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(msgpackPayload{Shared: shared.toWire(), Unique: extrinsic}); err != nil {
		return nil, err
	}
	return Output(buf.Bytes()), nil
}

// Binary reports that the output is not printable text.
func (MsgpackRenderer) Binary() bool { return true }

// IsBinary reports whether r produces non-text output. Renderers opt in by
// implementing Binary() bool.
func IsBinary(r Renderer) bool {
	b, ok := r.(interface{ Binary() bool })
	return ok && b.Binary()
}

// Renderer names accepted by RendererByName.
const (
	RendererJSON    = "json"
	RendererMsgpack = "msgpack"
)

// RendererByName resolves a renderer from its configuration name.
// An empty name selects the JSON renderer.
func RendererByName(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RendererJSON:
		return JSONRenderer{}, nil
	case RendererMsgpack:
		return MsgpackRenderer{}, nil
	default:
		return nil, errors.NewValidation("unknown renderer", errors.FieldError{
			Field:   "renderer",
			Message: fmt.Sprintf("must be %q or %q", RendererJSON, RendererMsgpack),
			Value:   name,
		}).WithTextCode(TextCodeInvalidConfig)
	}
}
