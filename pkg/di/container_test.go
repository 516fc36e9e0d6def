package di

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-flyweight/carregistry"
	"github.com/goliatone/go-flyweight/flyweight"
	"github.com/goliatone/go-flyweight/pkg/manifest"
)

func TestNewContainer(t *testing.T) {
	config := flyweight.DefaultConfig()
	config.Separator = "::"
	config.InitialCapacity = 1000

	container, err := NewContainer(config, zap.NewNop())
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container == nil {
		t.Fatal("NewContainer() returned nil container")
	}

	if container.Cache() == nil {
		t.Error("Container should have a non-nil cache")
	}

	if container.Logger() == nil {
		t.Error("Container should have a non-nil logger")
	}

	storedConfig := container.Config()
	if storedConfig.Separator != config.Separator {
		t.Errorf("Expected separator %q, got %q", config.Separator, storedConfig.Separator)
	}

	if storedConfig.InitialCapacity != config.InitialCapacity {
		t.Errorf("Expected capacity %d, got %d", config.InitialCapacity, storedConfig.InitialCapacity)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	config := container.Config()
	defaultConfig := flyweight.DefaultConfig()

	if config.Separator != defaultConfig.Separator {
		t.Errorf("Expected default separator %q, got %q", defaultConfig.Separator, config.Separator)
	}

	if config.InitialCapacity != defaultConfig.InitialCapacity {
		t.Errorf("Expected default capacity %d, got %d", defaultConfig.InitialCapacity, config.InitialCapacity)
	}

	if container.Logger() == nil {
		t.Error("Expected a no-op logger when none is provided")
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	invalidConfig := flyweight.DefaultConfig()
	invalidConfig.InitialCapacity = -1

	container, err := NewContainer(invalidConfig, nil)
	if err == nil {
		t.Fatal("Expected error for invalid config, got nil")
	}

	if !flyweight.IsInvalidConfig(err) {
		t.Errorf("Expected an invalid config error, got %v", err)
	}

	if container != nil {
		t.Error("Expected nil container for invalid config")
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	if container.Cache() != container.Cache() {
		t.Error("Cache() should return the same instance")
	}

	first, err := container.NewCarRegistry()
	if err != nil {
		t.Fatalf("NewCarRegistry() failed: %v", err)
	}
	second, err := container.NewCarRegistry()
	if err != nil {
		t.Fatalf("NewCarRegistry() failed: %v", err)
	}

	if first == second {
		t.Error("NewCarRegistry() should build a new registry each call")
	}

	if first.Cache() != second.Cache() {
		t.Error("Registries should share the container cache")
	}
}

func TestNewContainerFromManifest(t *testing.T) {
	m, err := manifest.Parse([]byte(`
cache:
  separator: "-"
preload:
  - [Chevrolet, Camaro2018, pink]
  - [BMW, M5, red]
  - [BMW, M5, red]
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	container, err := NewContainerFromManifest(m, nil)
	if err != nil {
		t.Fatalf("NewContainerFromManifest() failed: %v", err)
	}

	if size := container.Cache().Size(); size != 2 {
		t.Errorf("Expected 2 preloaded entries, got %d", size)
	}

	fw, ok, err := container.Cache().Lookup(flyweight.MustSharedState("BMW", "M5", "red"))
	if err != nil || !ok {
		t.Fatalf("Expected preloaded entry, ok=%v err=%v", ok, err)
	}
	if fw.Key() != "BMW-M5-red" {
		t.Errorf("Expected manifest separator in key, got %q", fw.Key())
	}
}

func TestNewContainerFromManifest_Collision(t *testing.T) {
	m, err := manifest.Parse([]byte(`
preload:
  - [a_b, c]
  - [a, b_c]
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	_, err = NewContainerFromManifest(m, nil)
	if !flyweight.IsKeyCollisionMismatch(err) {
		t.Errorf("Expected key collision error, got %v", err)
	}
}

func TestNewContainerFromManifest_InvalidConfig(t *testing.T) {
	m, err := manifest.Parse([]byte("cache:\n  renderer: yaml\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	_, err = NewContainerFromManifest(m, nil)
	if !flyweight.IsInvalidConfig(err) {
		t.Errorf("Expected invalid config error, got %v", err)
	}
}

func TestNewCarRegistry_UsesContainerLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	container, err := NewContainer(flyweight.DefaultConfig(), zap.New(core))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	registry, err := container.NewCarRegistry()
	if err != nil {
		t.Fatalf("NewCarRegistry() failed: %v", err)
	}

	_, err = registry.Register(context.Background(), carregistry.Car{
		Plates: "CL234IR", Owner: "James Doe", Brand: "BMW", Model: "M5", Color: "red",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	entries := logs.FilterMessage("adding car to police database").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 registration log line, got %d", len(entries))
	}
	if entries[0].LoggerName != "registry" {
		t.Errorf("Expected logger name 'registry', got %q", entries[0].LoggerName)
	}
}
