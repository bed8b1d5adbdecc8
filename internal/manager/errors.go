package manager

import (
	"errors"
	"fmt"

	"modelhostd/pkg/types"
)

// validationError signals an unsupported modality or malformed config.
// Raised synchronously, before any asynchronous work starts.
type validationError struct{ msg string }

func (e validationError) Error() string { return "invalid model request: " + e.msg }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// LoadError wraps a backend load failure with the model and modality it
// belongs to. The underlying cause is available via Unwrap.
type LoadError struct {
	Model    string
	Modality types.Modality
	Cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s model %q: %v", e.Modality, e.Model, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// IsLoadError reports whether err is a wrapped backend load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// modalityUnavailableError signals that no backend constructor is registered
// for the requested modality.
type modalityUnavailableError struct{ modality types.Modality }

func (e modalityUnavailableError) Error() string {
	return "no backend registered for modality: " + string(e.modality)
}

// ErrModalityUnavailable constructs a modalityUnavailableError.
func ErrModalityUnavailable(m types.Modality) error { return modalityUnavailableError{modality: m} }

// IsModalityUnavailable reports whether err indicates a missing backend
// constructor.
func IsModalityUnavailable(err error) bool {
	var me modalityUnavailableError
	return errors.As(err, &me)
}
