package form

import (
	"strings"

	"github.com/wolfman30/leadcapture/internal/locale"
)

// Digits strips every non-digit character.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical form used for submission: trimmed text,
// lower-cased email and a digits-only phone.
func Normalize(in Input) Input {
	return Input{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     Digits(in.Phone),
		Role:      strings.TrimSpace(in.Role),
		BirthDate: strings.TrimSpace(in.BirthDate),
		Message:   strings.TrimSpace(in.Message),
	}
}

// FormatPhone punctuates a phone progressively as it is typed, e.g.
// "(11", "(11) 9888", "(11) 9888-877", "(11) 98888-7777". Input beyond 11
// digits is dropped. Formatting its own output is a no-op.
func FormatPhone(raw string) string {
	d := Digits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// StateFromPhone looks up the state of the phone's area code. It is used for
// live feedback only.
func StateFromPhone(raw string) (string, bool) {
	d := Digits(raw)
	if len(d) < 2 {
		return "", false
	}
	return locale.StateForAreaCode(d[:2])
}
