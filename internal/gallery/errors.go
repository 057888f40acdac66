package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the ingestion root is missing. Fatal for a run.
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrDecodeFailure means a single file could not be decoded.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrProbeFailure means video metadata could not be read.
	ErrProbeFailure = errors.New("probe failure")
	// ErrSlugCollision means two distinct sources derive the same slug.
	ErrSlugCollision = errors.New("slug collision")
	// ErrPersistenceConflict means an item transaction was rolled back.
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrValidation means query parameters are outside their contract.
	ErrValidation = errors.New("validation error")
	// ErrLocaleNotSupported means a locale outside the supported set was requested.
	ErrLocaleNotSupported = errors.New("locale not supported")
)

// ValidationError describes one rejected input parameter.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrValidation for every ValidationError, and ErrLocaleNotSupported
// when the rejected parameter is a locale.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrLocaleNotSupported:
		return e.Field == "locale"
	default:
		return false
	}
}

// Code is the machine-readable error code exposed to HTTP clients.
func (e *ValidationError) Code() string {
	if e.Field == "locale" {
		return "locale_not_supported"
	}
	return "validation_error"
}

// CollisionError reports every source path that derived the same slug.
type CollisionError struct {
	Slug  string
	Paths []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("slug %q derived from %d sources: %v", e.Slug, len(e.Paths), e.Paths)
}

// Unwrap lets errors.Is match ErrSlugCollision.
func (e *CollisionError) Unwrap() error {
	return ErrSlugCollision
}
