// Package manifest loads YAML descriptions of an interning cache: its
// settings, the shared states to preload and the cars to register.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	errors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-flyweight/carregistry"
	"github.com/goliatone/go-flyweight/flyweight"
)

// TextCodeInvalidManifest is attached to every parse or validation error.
const TextCodeInvalidManifest = "INVALID_MANIFEST"

// Manifest describes how to build an interning cache, which shared states to
// preload into it and which cars to register once it is ready.
type Manifest struct {
	Cache   CacheSettings     `yaml:"cache"`
	Preload []Entry           `yaml:"preload"`
	Cars    []carregistry.Car `yaml:"cars"`
}

// CacheSettings overrides fields of a flyweight.Config. Unset fields keep
// the value of the base configuration.
type CacheSettings struct {
	Separator           *string `yaml:"separator"`
	NormalizeFieldOrder *bool   `yaml:"normalize_field_order"`
	InitialCapacity     *int    `yaml:"initial_capacity"`
	Renderer            *string `yaml:"renderer"`
}

// Entry is one preload item: either a YAML sequence of values or a mapping
// of field names to values. Mapping order is kept. Numbers and timestamps
// are kept as written; booleans and nulls are decoded.
type Entry struct {
	Fields []flyweight.Field
	Named  bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		fields := make([]flyweight.Field, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := scalarValue(child)
			if err != nil {
				return err
			}
			fields = append(fields, flyweight.Field{Value: value})
		}
		*e = Entry{Fields: fields}
		return nil

	case yaml.MappingNode:
		fields := make([]flyweight.Field, 0, len(node.Content)/2)
		seen := make(map[string]struct{}, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := fieldName(node.Content[i].Value)
			if name == "" {
				return fmt.Errorf("line %d: empty field name", node.Content[i].Line)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("line %d: duplicate field %q", node.Content[i].Line, name)
			}
			seen[name] = struct{}{}

			value, err := scalarValue(node.Content[i+1])
			if err != nil {
				return err
			}
			fields = append(fields, flyweight.Field{Name: name, Value: value})
		}
		*e = Entry{Fields: fields, Named: true}
		return nil

	default:
		return fmt.Errorf("line %d: preload entry must be a sequence or a mapping", node.Line)
	}
}

func scalarValue(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: shared state values must be scalars", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float", "!!timestamp":
		// Keep the source text so 007 and "007" intern to the same key.
		return node.Value, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// SharedState converts the entry into a flyweight.SharedState.
func (e Entry) SharedState() (flyweight.SharedState, error) {
	if e.Named {
		return flyweight.NewNamedSharedState(e.Fields...)
	}
	values := make([]any, len(e.Fields))
	for i, f := range e.Fields {
		values[i] = f.Value
	}
	return flyweight.NewSharedState(values...)
}

// Load reads and parses the manifest stored at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		category := errors.CategoryBadInput
		if os.IsNotExist(err) {
			category = errors.CategoryNotFound
		}
		return nil, errors.Wrap(err, category, "failed to read manifest").
			WithMetadata(map[string]any{"path": path})
	}

	m, err := Parse(data)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr.WithMetadata(map[string]any{"path": path})
		}
		return nil, err
	}
	return m, nil
}

// Parse decodes a manifest from YAML. Unknown keys are rejected and an empty
// document yields an empty manifest.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && err != io.EOF {
		return nil, invalidManifest(err, "failed to decode manifest")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks every preload entry and car.
func (m *Manifest) Validate() error {
	for i, entry := range m.Preload {
		if _, err := entry.SharedState(); err != nil {
			return invalidManifest(err, fmt.Sprintf("invalid preload entry %d", i)).
				WithMetadata(map[string]any{"preload_index": i})
		}
	}
	for i, car := range m.Cars {
		if err := car.Validate(); err != nil {
			return invalidManifest(err, fmt.Sprintf("invalid car %d", i)).
				WithMetadata(map[string]any{"car_index": i})
		}
	}
	return nil
}

// Config applies the cache settings on top of base and validates the result.
func (m *Manifest) Config(base flyweight.Config) (flyweight.Config, error) {
	cfg := base
	s := m.Cache

	if s.Separator != nil {
		cfg.Separator = *s.Separator
	}
	if s.NormalizeFieldOrder != nil {
		cfg.NormalizeFieldOrder = *s.NormalizeFieldOrder
	}
	if s.InitialCapacity != nil {
		cfg.InitialCapacity = *s.InitialCapacity
	}
	if s.Renderer != nil {
		renderer, err := flyweight.RendererByName(*s.Renderer)
		if err != nil {
			return flyweight.Config{}, err
		}
		cfg.Renderer = renderer
	}

	if err := cfg.Validate(); err != nil {
		return flyweight.Config{}, err
	}
	return cfg, nil
}

// SharedStates returns the preload entries as shared states in document order.
func (m *Manifest) SharedStates() ([]flyweight.SharedState, error) {
	states := make([]flyweight.SharedState, 0, len(m.Preload))
	for i, entry := range m.Preload {
		state, err := entry.SharedState()
		if err != nil {
			return nil, invalidManifest(err, fmt.Sprintf("invalid preload entry %d", i)).
				WithMetadata(map[string]any{"preload_index": i})
		}
		states = append(states, state)
	}
	return states, nil
}

// IsInvalidManifest reports whether err was produced while parsing or
// validating a manifest.
func IsInvalidManifest(err error) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.TextCode == TextCodeInvalidManifest
}

func invalidManifest(source error, message string) *errors.Error {
	return errors.Wrap(source, errors.CategoryValidation, message).
		WithTextCode(TextCodeInvalidManifest)
}
