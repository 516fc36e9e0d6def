package manifest

import (
	"testing"

	errors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-flyweight/carregistry"
	"github.com/goliatone/go-flyweight/flyweight"
	"github.com/goliatone/go-flyweight/pkg/testsupport"
)

func TestLoad(t *testing.T) {
	m, err := Load(testsupport.FixturePath("cars.yaml"))
	require.NoError(t, err)

	require.Len(t, m.Preload, 5)
	assert.False(t, m.Preload[0].Named)
	assert.True(t, m.Preload[3].Named)
	assert.Equal(t, []flyweight.Field{
		{Name: "brand", Value: "BMW"},
		{Name: "model", Value: "X6"},
		{Name: "body_color", Value: "white"},
	}, m.Preload[4].Fields)

	require.Len(t, m.Cars, 2)
	assert.Equal(t, carregistry.Car{
		Plates: "CL234IR", Owner: "James Doe", Brand: "BMW", Model: "M5", Color: "red",
	}, m.Cars[0])

	states, err := m.SharedStates()
	require.NoError(t, err)
	require.Len(t, states, 5)
	assert.Equal(t, []string{"Mercedes Benz", "C300", "black"}, states[1].Strings())
	assert.Equal(t, "brand", states[3].Field(0).Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testsupport.FixturePath("missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestManifest_Config(t *testing.T) {
	m, err := Load(testsupport.FixturePath("cars.yaml"))
	require.NoError(t, err)

	cfg, err := m.Config(flyweight.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "_", cfg.Separator)
	assert.True(t, cfg.NormalizeFieldOrder)
	assert.Equal(t, 16, cfg.InitialCapacity)
	assert.Equal(t, flyweight.MsgpackRenderer{}, cfg.Renderer)
}

func TestManifest_ConfigKeepsBase(t *testing.T) {
	m, err := Parse([]byte("preload:\n  - [BMW, M5, red]\n"))
	require.NoError(t, err)

	base := flyweight.DefaultConfig()
	base.Separator = "|"

	cfg, err := m.Config(base)
	require.NoError(t, err)
	assert.Equal(t, "|", cfg.Separator)
	assert.Equal(t, base.InitialCapacity, cfg.InitialCapacity)
	assert.Equal(t, flyweight.JSONRenderer{}, cfg.Renderer)
}

func TestManifest_ConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty separator", yaml: "cache:\n  separator: \"\"\n"},
		{name: "negative capacity", yaml: "cache:\n  initial_capacity: -1\n"},
		{name: "unknown renderer", yaml: "cache:\n  renderer: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = m.Config(flyweight.DefaultConfig())
			require.Error(t, err)
			assert.True(t, flyweight.IsInvalidConfig(err))
		})
	}
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Preload)
	assert.Empty(t, m.Cars)

	states, err := m.SharedStates()
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "caches: {}\n"},
		{name: "scalar entry", yaml: "preload:\n  - BMW\n"},
		{name: "nested value", yaml: "preload:\n  - [BMW, [M5]]\n"},
		{name: "null value", yaml: "preload:\n  - [BMW, null]\n"},
		{name: "empty entry", yaml: "preload:\n  - []\n"},
		{name: "duplicate field", yaml: "preload:\n  - {brand: BMW, Brand: Audi}\n"},
		{name: "invalid car", yaml: "cars:\n  - plates: CL234IR\n"},
		{name: "malformed yaml", yaml: "preload: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, IsInvalidManifest(err))
		})
	}
}

func TestEntry_SharedState(t *testing.T) {
	m, err := Parse([]byte(`
preload:
  - [Camaro, 2018, true]
  - {color: red, brand: BMW}
`))
	require.NoError(t, err)

	positional, err := m.Preload[0].SharedState()
	require.NoError(t, err)
	assert.Equal(t, []any{"Camaro", "2018", true}, positional.Values())
	assert.False(t, positional.Named())

	named, err := m.Preload[1].SharedState()
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "BMW"}, named.Strings(), "document order is kept")
	assert.True(t, named.Named())
}

func TestParse_ScalarsKeepSourceText(t *testing.T) {
	m, err := Parse([]byte(`
preload:
  - [Bond, "007", "1.10"]
  - [Bond, 007, 1.10]
  - [Bond, 7, 1.1]
  - [Bond, 0x10, 1e3]
  - [BMW, M5, 2018-01-01]
`))
	require.NoError(t, err)

	cache, err := flyweight.NewInterningCache(flyweight.DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name        string
		index       int
		wantKey     flyweight.Key
		wantCreated bool
	}{
		{name: "quoted", index: 0, wantKey: "Bond_007_1.10", wantCreated: true},
		{name: "plain matches quoted", index: 1, wantKey: "Bond_007_1.10", wantCreated: false},
		{name: "different text", index: 2, wantKey: "Bond_7_1.1", wantCreated: true},
		{name: "hex and exponent", index: 3, wantKey: "Bond_0x10_1e3", wantCreated: true},
		{name: "timestamp", index: 4, wantKey: "BMW_M5_2018-01-01", wantCreated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := m.Preload[tt.index].SharedState()
			require.NoError(t, err)

			fw, created, err := cache.GetOrCreate(state)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, fw.Key())
			assert.Equal(t, tt.wantCreated, created)
		})
	}

	assert.Equal(t, 4, cache.Size())
}

func TestManifest_PreloadIntoCache(t *testing.T) {
	m, err := Load(testsupport.FixturePath("cars.yaml"))
	require.NoError(t, err)

	cfg, err := m.Config(flyweight.DefaultConfig())
	require.NoError(t, err)
	cache, err := flyweight.NewInterningCache(cfg)
	require.NoError(t, err)

	states, err := m.SharedStates()
	require.NoError(t, err)
	require.NoError(t, cache.Preload(states...))
	assert.Equal(t, 5, cache.Size())

	reordered, err := flyweight.NewNamedSharedState(
		flyweight.Field{Name: "color", Value: "red"},
		flyweight.Field{Name: "model", Value: "M5"},
		flyweight.Field{Name: "brand", Value: "BMW"},
	)
	require.NoError(t, err)

	_, created, err := cache.GetOrCreate(reordered)
	require.NoError(t, err)
	assert.False(t, created, "normalized field order matches the preloaded mapping")
}
