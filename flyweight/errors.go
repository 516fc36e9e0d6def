package flyweight

import (
	"fmt"

	errors "github.com/goliatone/go-errors"
)

// Text codes attached to every error returned by this package.
const (
	TextCodeInvalidSharedState    = "INVALID_SHARED_STATE"
	TextCodeInvalidExtrinsicState = "INVALID_EXTRINSIC_STATE"
	TextCodeKeyCollisionMismatch  = "KEY_COLLISION_MISMATCH"
	TextCodeInvalidConfig         = "INVALID_CONFIG"
)

// IsInvalidSharedState reports whether err was caused by an empty or
// unrenderable shared state. The caller may retry with corrected input.
func IsInvalidSharedState(err error) bool {
	return hasTextCode(err, TextCodeInvalidSharedState)
}

// IsInvalidExtrinsicState reports whether err was caused by extrinsic state
// a Flyweight could not render.
func IsInvalidExtrinsicState(err error) bool {
	return hasTextCode(err, TextCodeInvalidExtrinsicState)
}

// IsKeyCollisionMismatch reports whether err signals two structurally
// different shared states deriving the same key. This is an invariant
// violation and is not recoverable by retrying.
func IsKeyCollisionMismatch(err error) bool {
	return hasTextCode(err, TextCodeKeyCollisionMismatch)
}

// IsInvalidConfig reports whether err came from Config validation.
func IsInvalidConfig(err error) bool {
	return hasTextCode(err, TextCodeInvalidConfig)
}

func hasTextCode(err error, code string) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.TextCode == code
}

func invalidSharedState(format string, args ...any) *errors.Error {
	return errors.New(fmt.Sprintf(format, args...), errors.CategoryValidation).
		WithTextCode(TextCodeInvalidSharedState)
}

func invalidExtrinsicState(source error, message string) *errors.Error {
	if source == nil {
		return errors.New(message, errors.CategoryValidation).
			WithTextCode(TextCodeInvalidExtrinsicState)
	}
	return errors.Wrap(source, errors.CategoryValidation, message).
		WithTextCode(TextCodeInvalidExtrinsicState)
}

func keyCollisionMismatch(key Key, existing, requested SharedState) *errors.Error {
	return errors.New(
		fmt.Sprintf("key %q is already bound to %s, refusing to return it for %s", key, existing, requested),
		errors.CategoryInternal,
	).
		WithTextCode(TextCodeKeyCollisionMismatch).
		WithSeverity(errors.SeverityFatal).
		WithMetadata(map[string]any{
			"key":       string(key),
			"existing":  existing.Strings(),
			"requested": requested.Strings(),
		})
}
