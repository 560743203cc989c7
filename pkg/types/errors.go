package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"         // KindValidation is a missing or malformed request field.
	KindUnauthorized      ErrorKind = "unauthorized"       // KindUnauthorized is an access-control rejection.
	KindExtractionFailed  ErrorKind = "extraction_failed"  // KindExtractionFailed covers browser launch, navigation and evaluation failures.
	KindMissingCredential ErrorKind = "missing_credential" // KindMissingCredential means no key resolved for a provider that requires one.
	KindGenerationFailed  ErrorKind = "generation_failed"  // KindGenerationFailed wraps any provider call failure.
)

// Error is a classified failure. It wraps its root cause so errors.Is and
// errors.As see through it.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so callers can
// match with errors.Is(err, &types.Error{Kind: types.KindValidation}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" when
// err carries no classification.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NewValidationError reports a missing or malformed request field.
func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewUnauthorizedError reports an access-control rejection.
func NewUnauthorizedError(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewExtractionError wraps a browser or DOM failure.
func NewExtractionError(err error) error {
	return &Error{Kind: KindExtractionFailed, Message: "extraction failed", Err: err}
}

// NewMissingCredentialError reports that provider has no usable key.
func NewMissingCredentialError(provider string) error {
	return &Error{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("%s API key is missing: provide it with the request or configure it on the server", provider),
	}
}

// NewGenerationError wraps any provider failure.
func NewGenerationError(err error) error {
	return &Error{Kind: KindGenerationFailed, Message: "failed to generate component", Err: err}
}
