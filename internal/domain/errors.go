package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNetwork       = errors.New("network failure")
	ErrStatus        = errors.New("unexpected response status")
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("not configured")
)

// APIError is a non-success response from the dashboard API. Message is the
// server-provided text and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrStatus
}

// ServerMessage returns the message carried by an APIError in err's chain, or fallback.
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
