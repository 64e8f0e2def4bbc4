package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sanitize coerces a JSON value to text, drops ASCII and C1 control
// characters and trims the result.
func Sanitize(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	s = strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// DecodeCreateRequest reads one JSON object and returns a fully populated
// request, or a *SyntaxError for unparseable input, or a *FieldError naming
// the first missing required field. Values are sanitized before checking.
func DecodeCreateRequest(r io.Reader) (*CreateLeadRequest, error) {
	dec := json.NewDecoder(r)
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Err: ErrEmptyBody}
		}
		return nil, &SyntaxError{Err: err}
	}
	if dec.More() {
		return nil, &SyntaxError{Err: errors.New("conteúdo inesperado após o objeto JSON")}
	}

	req := &CreateLeadRequest{}
	for _, name := range RequiredFields {
		s, ok := raw[name].(string)
		if !ok {
			return nil, requiredFieldError(name)
		}
		clean := Sanitize(s)
		if clean == "" {
			return nil, requiredFieldError(name)
		}
		req.Set(name, clean)
	}
	for _, name := range AttributionFields {
		v, present := raw[name]
		if !present || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, &FieldError{Field: name, Message: fmt.Sprintf("Campo '%s' deve ser uma string", name)}
		}
		req.Set(name, Sanitize(s))
	}
	return req, nil
}
