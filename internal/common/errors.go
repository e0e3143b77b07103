package common

import (
	"errors"
	"fmt"
)

// ErrKind classifies pipeline failures. Kinds map 1:1 onto the error taxonomy
// surfaced to CLI and API clients.
type ErrKind string

const (
	ErrKindDocumentRead ErrKind = "DOCUMENT_READ_ERROR"
	ErrKindProvider     ErrKind = "EXTRACTION_PROVIDER_ERROR"
	ErrKindParse        ErrKind = "EXTRACTION_PARSE_ERROR"
	ErrKindFormSchema   ErrKind = "FORM_SCHEMA_ERROR"
	ErrKindConfig       ErrKind = "CONFIG_ERROR"
	ErrKindInternal     ErrKind = "INTERNAL_ERROR"
)

// AppError carries a machine-readable kind alongside the wrapped cause.
type AppError struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by kind, so callers can test against a bare
// &AppError{Kind: ...} sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func NewAppError(kind ErrKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func NewDocumentReadError(message string, cause error) *AppError {
	return NewAppError(ErrKindDocumentRead, message, cause)
}

func NewProviderError(message string, cause error) *AppError {
	return NewAppError(ErrKindProvider, message, cause)
}

func NewParseError(message string, cause error) *AppError {
	return NewAppError(ErrKindParse, message, cause)
}

func NewFormSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrKindFormSchema, message, cause)
}

func NewConfigError(message string) *AppError {
	return NewAppError(ErrKindConfig, message, nil)
}

// KindOf returns the ErrKind of err if it is (or wraps) an AppError,
// ErrKindInternal otherwise.
func KindOf(err error) ErrKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrKindInternal
}
