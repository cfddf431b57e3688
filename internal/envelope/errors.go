package envelope

import (
	"errors"
	"fmt"
)

// Kind classifies request failures.
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"   // raw bytes are neither JSON nor gzip JSON
	KindMissingField   Kind = "missing_field"   // required field absent or empty
	KindDecodeError    Kind = "decode_error"    // field fails its declared encoding
	KindModelFailure   Kind = "model_failure"   // collaborator raised a fault
	KindStartupFailure Kind = "startup_failure" // collaborator could not be initialised
)

// Error is a classified request failure. Its message is the human-readable
// reason reported in the failure envelope.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidInput:
		return fmt.Sprintf("Invalid request format: %v", e.Err)
	case KindMissingField:
		return "Missing " + e.Field
	case KindDecodeError:
		if e.Field == FieldAudioFile {
			return fmt.Sprintf("Base64 decode error: %v", e.Err)
		}
		return fmt.Sprintf("Invalid %s: %v", e.Field, e.Err)
	case KindStartupFailure:
		return fmt.Sprintf("Failed to load model: %v", e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput wraps a decode failure of the raw request bytes.
func InvalidInput(err error) error {
	return &Error{Kind: KindInvalidInput, Err: err}
}

// MissingField reports a required field that is absent or empty.
func MissingField(field string) error {
	return &Error{Kind: KindMissingField, Field: field}
}

// DecodeError reports a field that does not decode from its declared encoding.
func DecodeError(field string, err error) error {
	return &Error{Kind: KindDecodeError, Field: field, Err: err}
}

// ModelFailure wraps a fault raised by a speech collaborator.
func ModelFailure(err error) error {
	return &Error{Kind: KindModelFailure, Err: err}
}

// StartupFailure wraps a collaborator initialisation failure.
func StartupFailure(err error) error {
	return &Error{Kind: KindStartupFailure, Err: err}
}

// KindOf returns the classification of err, or "" when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
