package utils

import (
	"errors"
	"fmt"
)

// ErrKind classifies an application error.
type ErrKind int

const (
	// ErrKindConfig marks a missing or invalid startup configuration value.
	// The only fatal kind: the process must not start without it.
	ErrKindConfig ErrKind = iota
	// ErrKindStorage marks a database failure. Surfaced to the user as a
	// "try again later" reply; never swallowed.
	ErrKindStorage
	// ErrKindTransport marks a gateway send/edit failure. Logged only; the
	// gateway redelivers inbound updates on its own.
	ErrKindTransport
	// ErrKindDrafting marks a drafting backend failure (timeout, non-success
	// status, unparseable body). Retryable: order state is left untouched.
	ErrKindDrafting
)

// AppError represents an application error
type AppError struct {
	Kind    ErrKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(kind ErrKind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ConfigError creates a fatal configuration error
func ConfigError(message string, err error) *AppError {
	return NewAppError(ErrKindConfig, message, err)
}

// StorageError creates a storage infrastructure error
func StorageError(message string, err error) *AppError {
	return NewAppError(ErrKindStorage, message, err)
}

// TransportError creates a gateway transport error
func TransportError(message string, err error) *AppError {
	return NewAppError(ErrKindTransport, message, err)
}

// DraftingError creates a retryable drafting backend error
func DraftingError(message string, err error) *AppError {
	return NewAppError(ErrKindDrafting, message, err)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsStorageError checks if an error is a storage error
func IsStorageError(err error) bool {
	return IsKind(err, ErrKindStorage)
}

// IsDraftingError checks if an error is a drafting backend error
func IsDraftingError(err error) bool {
	return IsKind(err, ErrKindDrafting)
}
