package carregistry

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	errors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-flyweight/flyweight"
)

// Text codes attached to errors returned by this package.
const (
	TextCodeInvalidCar    = "INVALID_CAR"
	TextCodeInvalidRecord = "INVALID_RECORD"
)

// Car is a single entry submitted to the police database.
// Brand, Model and Color are shared between cars; Plates and Owner are not.
type Car struct {
	Plates string `json:"plates" yaml:"plates"`
	Owner  string `json:"owner" yaml:"owner"`
	Brand  string `json:"brand" yaml:"brand"`
	Model  string `json:"model" yaml:"model"`
	Color  string `json:"color" yaml:"color"`
}

// Validate checks that every attribute is present.
func (c Car) Validate() error {
	err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.Plates, validation.Required),
			validation.Field(&c.Owner, validation.Required),
			validation.Field(&c.Brand, validation.Required),
			validation.Field(&c.Model, validation.Required),
			validation.Field(&c.Color, validation.Required),
		)
	}, "invalid car")
	if err != nil {
		return err.WithTextCode(TextCodeInvalidCar)
	}
	return nil
}

// Split partitions the car into the state shared with other cars of the same
// brand, model and color, and the state unique to this car.
func (c Car) Split() (flyweight.SharedState, flyweight.ExtrinsicState, error) {
	shared, err := flyweight.NewSharedState(c.Brand, c.Model, c.Color)
	if err != nil {
		return flyweight.SharedState{}, nil, err
	}
	return shared, flyweight.ExtrinsicState{c.Plates, c.Owner}, nil
}

// IsInvalidCar reports whether err was caused by a car missing attributes.
func IsInvalidCar(err error) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.TextCode == TextCodeInvalidCar
}
