package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed server response")
	ErrRejected          = errors.New("request rejected")
	ErrNoCredential      = errors.New("no credential")
)

// ServerError is an error response that carried a status code and, usually,
// a human-readable message from the server. It unwraps to ErrUnauthorized,
// ErrForbidden, ErrNotFound or ErrRejected depending on the status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

func (e *ServerError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRejected
	}
}
