// Package errors provides error code definitions for the chat backend.
package errors

import "fmt"

// ErrorCode represents a unique error code carried across API boundaries.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrPermission ErrorCode = "PERMISSION_DENIED"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Auth errors
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrInvalidToken ErrorCode = "INVALID_TOKEN"

	// Database errors
	ErrDatabase  ErrorCode = "DATABASE_ERROR"
	ErrMigration ErrorCode = "MIGRATION_FAILED"

	// Conversation errors
	ErrConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrNotParticipant       ErrorCode = "NOT_PARTICIPANT"
	ErrNotAdmin             ErrorCode = "NOT_ADMIN"

	// Message errors
	ErrMessageNotFound ErrorCode = "MESSAGE_NOT_FOUND"

	// Deck session errors
	ErrDeckSessionNotFound ErrorCode = "DECK_SESSION_NOT_FOUND"
	ErrDeckInvalid         ErrorCode = "DECK_INVALID"

	// Cache errors
	ErrCache ErrorCode = "CACHE_ERROR"

	// Validation capability errors
	ErrValidatorFailed  ErrorCode = "VALIDATOR_FAILED"
	ErrValidatorTimeout ErrorCode = "VALIDATOR_TIMEOUT"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
