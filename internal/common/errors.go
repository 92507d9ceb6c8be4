package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return nil
}

// Common application errors
var (
	// ErrInvalidImage means the payload could not be decoded as a raster image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrNoTextExtracted means OCR produced no usable text to extract from.
	ErrNoTextExtracted = errors.New("no text extracted")
	// ErrRecognition means the OCR engine itself failed on a decodable image.
	ErrRecognition  = errors.New("recognition failed")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// NewAppError builds an AppError wrapping cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
