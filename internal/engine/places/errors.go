package places

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialMissing = errors.New("places API key is missing")
	ErrTransport         = errors.New("places transport failure")
)

// APIError is a non-OK status reported by the places API itself.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places API status %s", e.Status)
	}
	return fmt.Sprintf("places API status %s: %s", e.Status, e.Message)
}

// TransportError wraps network, HTTP and decoding failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RateLimitError indicates the API is throttling us.
type RateLimitError struct {
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d)", e.StatusCode)
}
