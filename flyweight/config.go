package flyweight

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	errors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-flyweight/internal/interninfra"
)

// Config exposes the options of an InterningCache.
type Config struct {
	// Separator is placed between rendered values when deriving keys.
	Separator string

	// NormalizeFieldOrder orders fully named shared states by field name
	// before deriving their key. Positional states are never reordered.
	NormalizeFieldOrder bool

	// InitialCapacity pre-sizes the cache. Must be non-negative.
	InitialCapacity int

	// Renderer is handed to every Flyweight the cache creates.
	// Nil selects JSONRenderer.
	Renderer Renderer

	// KeyDeriver overrides the deriver built from Separator and
	// NormalizeFieldOrder.
	KeyDeriver KeyDeriver
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	internal := interninfra.DefaultConfig()
	return Config{
		Separator:       DefaultKeySeparator,
		InitialCapacity: internal.InitialCapacity,
		Renderer:        JSONRenderer{},
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Separator, validation.Required),
		validation.Field(&c.InitialCapacity, validation.Min(0)),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid interning cache configuration").
			WithTextCode(TextCodeInvalidConfig)
	}

	if err := c.toInternal().Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid interning store configuration").
			WithTextCode(TextCodeInvalidConfig)
	}
	return nil
}

func (c Config) keyDeriver() KeyDeriver {
	if c.KeyDeriver != nil {
		return c.KeyDeriver
	}
	return NewKeyDeriver(c.Separator, c.NormalizeFieldOrder)
}

func (c Config) renderer() Renderer {
	if c.Renderer != nil {
		return c.Renderer
	}
	return JSONRenderer{}
}

func (c Config) toInternal() interninfra.Config {
	return interninfra.Config{
		InitialCapacity: c.InitialCapacity,
	}
}
