package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("leads: lead not found")

	// ErrEmptyBody is returned when the request has no content at all
	ErrEmptyBody = errors.New("corpo da requisição vazio")
)

// SyntaxError reports a body that is not a JSON object.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "leads: invalid json: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Details is the parser message returned to the caller.
func (e *SyntaxError) Details() string {
	return e.Err.Error()
}

// FieldError names the field that made a request unacceptable. Message is
// safe to show to the client.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func requiredFieldError(field string) *FieldError {
	return &FieldError{
		Field:   field,
		Message: fmt.Sprintf("Campo '%s' é obrigatório e deve ser uma string não vazia", field),
	}
}

// PrepareError is raised by PrepareForAPI before a request is sent.
type PrepareError struct {
	Message string
}

func (e *PrepareError) Error() string {
	return e.Message
}
