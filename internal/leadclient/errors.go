package leadclient

import (
	"errors"
	"fmt"

	"github.com/wolfman30/leadcapture/internal/leads"
)

const (
	connectionMessage = "Erro de conexão com o servidor"
	fallbackMessage   = "Erro ao enviar"
)

// APIError is a non-2xx answer from the lead endpoint. Message is the text
// the backend chose to expose.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("leadclient: status %d: %s", e.Status, e.Message)
}

// ConnectionError means no response was received, including timeouts.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "leadclient: connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UserMessage picks the single message shown to the visitor for a failed
// submission: the backend's own text, then the connection message, then the
// client-side rejection text. Anything else gets a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connectionMessage
	}
	var prepErr *leads.PrepareError
	if errors.As(err, &prepErr) && prepErr.Message != "" {
		return prepErr.Message
	}
	var fieldErr *leads.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Message != "" {
		return fieldErr.Message
	}
	return fallbackMessage
}
