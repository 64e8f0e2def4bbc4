// Package form implements the contact form model: field normalization,
// phone formatting and the validation rules shown to visitors.
package form

import (
	"sort"
	"strings"
)

// Field names a form field using its wire name.
type Field string

const (
	FieldName      Field = "nome"
	FieldEmail     Field = "email"
	FieldPhone     Field = "telefone"
	FieldRole      Field = "cargo"
	FieldBirthDate Field = "dataNascimento"
	FieldMessage   Field = "mensagem"

	// FieldSubmit carries whole-form errors such as a failed request.
	FieldSubmit Field = "submit"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldRole, FieldBirthDate, FieldMessage}

// Input is the raw contact form as typed by the visitor.
type Input struct {
	Name      string `json:"nome"`
	Email     string `json:"email"`
	Phone     string `json:"telefone"`
	Role      string `json:"cargo"`
	BirthDate string `json:"dataNascimento"`
	Message   string `json:"mensagem"`
}

// Get returns the value of f, or "" for unknown fields.
func (in Input) Get(f Field) string {
	switch f {
	case FieldName:
		return in.Name
	case FieldEmail:
		return in.Email
	case FieldPhone:
		return in.Phone
	case FieldRole:
		return in.Role
	case FieldBirthDate:
		return in.BirthDate
	case FieldMessage:
		return in.Message
	}
	return ""
}

// Set assigns value to f. It reports false for unknown fields.
func (in *Input) Set(f Field, value string) bool {
	switch f {
	case FieldName:
		in.Name = value
	case FieldEmail:
		in.Email = value
	case FieldPhone:
		in.Phone = value
	case FieldRole:
		in.Role = value
	case FieldBirthDate:
		in.BirthDate = value
	case FieldMessage:
		in.Message = value
	default:
		return false
	}
	return true
}

// Errors maps a field to the message shown next to it. A missing key means
// the field is valid.
type Errors map[Field]string

// HasFieldErrors reports whether any field other than submit failed.
func (e Errors) HasFieldErrors() bool {
	for f := range e {
		if f != FieldSubmit {
			return true
		}
	}
	return false
}

// Clear drops the message for f.
func (e Errors) Clear(f Field) {
	delete(e, f)
}

// Fields returns the failing field names sorted, submit excluded.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		if f != FieldSubmit {
			out = append(out, string(f))
		}
	}
	sort.Strings(out)
	return out
}

// ValidationError is returned when a submission is rejected before any
// request is made.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	return "form: validation failed: " + strings.Join(e.Errors.Fields(), ", ")
}

// FieldError is the first failure found by the fail-fast convention.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return "form: " + string(e.Field) + ": " + e.Message
}
