package resend

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a client is asked to send
	// without a configured API key.
	ErrMissingAPIKey = errors.New("API key is missing, configure your Resend API key")

	// ErrInvalidResponse is returned when the server response cannot
	// be parsed.
	ErrInvalidResponse = errors.New("received an invalid response from the server")
)

// HTTPError is a non-2xx response whose body carried no parseable
// Resend error payload.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error with status code %d", e.StatusCode)
}

// APIError is a structured error returned by the Resend API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// AttachmentError reports a failure preparing a local file for attachment.
type AttachmentError struct {
	Message string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment error: %s", e.Message)
}
