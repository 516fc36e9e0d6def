package di

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-flyweight/carregistry"
	"github.com/goliatone/go-flyweight/flyweight"
	"github.com/goliatone/go-flyweight/pkg/manifest"
)

// Container provides dependency injection for interning components.
// It owns a single InterningCache and the logger handed to everything built
// on top of it, and provides factory methods for car registries.
type Container struct {
	cache  *flyweight.InterningCache
	config flyweight.Config
	logger *zap.Logger
}

// NewContainer creates a new DI container with the provided cache configuration.
// A nil logger is replaced by a no-op logger.
func NewContainer(config flyweight.Config, logger *zap.Logger) (*Container, error) {
	cache, err := flyweight.NewInterningCache(config)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Container{
		cache:  cache,
		config: config,
		logger: logger,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration
// and a no-op logger.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(flyweight.DefaultConfig(), nil)
}

// NewContainerFromManifest builds the cache described by m and preloads its
// entries.
func NewContainerFromManifest(m *manifest.Manifest, logger *zap.Logger) (*Container, error) {
	config, err := m.Config(flyweight.DefaultConfig())
	if err != nil {
		return nil, err
	}

	states, err := m.SharedStates()
	if err != nil {
		return nil, err
	}

	container, err := NewContainer(config, logger)
	if err != nil {
		return nil, err
	}

	if err := container.cache.Preload(states...); err != nil {
		return nil, err
	}
	container.logger.Debug("cache preloaded", zap.Int("size", container.cache.Size()))

	return container, nil
}

// Cache returns the singleton interning cache.
func (c *Container) Cache() *flyweight.InterningCache {
	return c.cache
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() flyweight.Config {
	return c.config
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// NewCarRegistry creates a registry backed by the container cache. The
// container logger is used unless opts override it.
func (c *Container) NewCarRegistry(opts ...carregistry.Option) (*carregistry.Registry, error) {
	opts = append([]carregistry.Option{carregistry.WithLogger(c.logger.Named("registry"))}, opts...)
	return carregistry.New(c.cache, opts...)
}
