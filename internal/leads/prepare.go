package leads

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	simpleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var maxLengths = []struct {
	field string
	max   int
}{
	{"name", 100},
	{"email", 100},
	{"phone", 20},
	{"position", 100},
	{"birthDate", 10},
	{"message", 2000},
	{"utm_source", 200},
	{"utm_medium", 200},
	{"utm_campaign", 200},
	{"utm_term", 200},
	{"utm_content", 200},
	{"gclid", 200},
	{"fbclid", 200},
}

// PrepareForAPI is the last check before a request leaves the client. It
// sanitizes every field, then enforces presence, a basic email and date
// shape, and column limits. Failures are *PrepareError.
func PrepareForAPI(req CreateLeadRequest) (CreateLeadRequest, error) {
	var out CreateLeadRequest
	for _, name := range append(append([]string{}, RequiredFields...), AttributionFields...) {
		out.Set(name, Sanitize(req.Get(name)))
	}

	var missing []string
	for _, name := range RequiredFields {
		if out.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return out, &PrepareError{Message: "Campos obrigatórios: " + strings.Join(missing, ", ")}
	}
	if !simpleEmail.MatchString(out.Email) {
		return out, &PrepareError{Message: "Email inválido"}
	}
	if !isoDate.MatchString(out.BirthDate) {
		return out, &PrepareError{Message: "Data deve estar no formato YYYY-MM-DD"}
	}
	for _, limit := range maxLengths {
		if utf8.RuneCountInString(out.Get(limit.field)) > limit.max {
			return out, &PrepareError{Message: fmt.Sprintf("Campo %s muito longo (máximo %d caracteres)", limit.field, limit.max)}
		}
	}
	return out, nil
}
