package flyweight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// Field is one attribute of a SharedState. Name is optional; states built
// with NewSharedState carry positional fields only.
type Field struct {
	Name  string
	Value any
}

// SharedState is an immutable, ordered bundle of attribute values: the
// intrinsic portion of an entity that many entities can share.
//
// Values must be Go basic kinds (bool, integers, floats, complex numbers,
// strings) or non-nil pointers to them. The zero SharedState is empty and is
// rejected by every cache operation.
type SharedState struct {
	fields   []Field
	rendered []string
}

// NewSharedState builds a SharedState from positional values.
func NewSharedState(values ...any) (SharedState, error) {
	fields := make([]Field, len(values))
	for i, v := range values {
		fields[i] = Field{Value: v}
	}
	return newSharedState(fields)
}

// NewNamedSharedState builds a SharedState from named fields, keeping the
// order in which they are supplied.
func NewNamedSharedState(fields ...Field) (SharedState, error) {
	return newSharedState(slices.Clone(fields))
}

// MustSharedState is like NewSharedState but panics on invalid input.
// It is intended for literals known to be valid.
func MustSharedState(values ...any) SharedState {
	s, err := NewSharedState(values...)
	if err != nil {
		panic(err)
	}
	return s
}

func newSharedState(fields []Field) (SharedState, error) {
	if len(fields) == 0 {
		return SharedState{}, invalidSharedState("shared state must contain at least one value")
	}

	rendered := make([]string, len(fields))
	for i, f := range fields {
		v, ok := basicValue(f.Value)
		if !ok {
			return SharedState{}, invalidSharedState(
				"field %d%s of type %T cannot be rendered into a cache key", i, nameSuffix(f.Name), f.Value,
			).WithMetadata(map[string]any{"index": i, "name": f.Name})
		}
		fields[i].Value = v
		rendered[i] = fmt.Sprintf("%v", v)
	}

	return SharedState{fields: fields, rendered: rendered}, nil
}

// basicValue dereferences pointers and reports whether the result is a basic kind.
func basicValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	if !isBasicKind(rv.Kind()) {
		return nil, false
	}
	return rv.Interface(), true
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

func nameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}

// Len returns the number of fields.
func (s SharedState) Len() int {
	return len(s.fields)
}

// IsZero reports whether s holds no fields.
func (s SharedState) IsZero() bool {
	return len(s.fields) == 0
}

// Field returns the i-th field. It panics if i is out of range.
func (s SharedState) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the fields in supplied order.
func (s SharedState) Fields() []Field {
	return slices.Clone(s.fields)
}

// Values returns a copy of the field values in supplied order.
func (s SharedState) Values() []any {
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		values[i] = f.Value
	}
	return values
}

// Strings returns the rendered form of each value in supplied order.
func (s SharedState) Strings() []string {
	return slices.Clone(s.rendered)
}

// Named reports whether every field carries a name.
func (s SharedState) Named() bool {
	if len(s.fields) == 0 {
		return false
	}
	for _, f := range s.fields {
		if f.Name == "" {
			return false
		}
	}
	return true
}

// Equal reports structural equality: same field count and the same rendered
// value at every position. Field names are ignored.
func (s SharedState) Equal(other SharedState) bool {
	return slices.Equal(s.rendered, other.rendered)
}

func (s SharedState) String() string {
	return "[" + strings.Join(s.rendered, ", ") + "]"
}

// MarshalJSON encodes named states as an object in field order and
// positional states as an array.
func (s SharedState) MarshalJSON() ([]byte, error) {
	if !s.Named() {
		values := make([]any, len(s.fields))
		for i, f := range s.fields {
			values[i] = jsonValue(f.Value, s.rendered[i])
		}
		return json.Marshal(values)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(jsonValue(f.Value, s.rendered[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue substitutes the rendered string for values encoding/json rejects.
func jsonValue(v any, rendered string) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Complex64, reflect.Complex128:
		return rendered
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return rendered
		}
	}
	return v
}

// toWire returns the value handed to binary renderers: a map for named
// states, a slice otherwise.
func (s SharedState) toWire() any {
	if !s.Named() {
		values := make([]any, len(s.fields))
		for i, f := range s.fields {
			values[i] = jsonValue(f.Value, s.rendered[i])
		}
		return values
	}
	m := make(map[string]any, len(s.fields))
	for i, f := range s.fields {
		m[f.Name] = jsonValue(f.Value, s.rendered[i])
	}
	return m
}
