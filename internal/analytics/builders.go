package analytics

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// NormalizeEmail trims and lower-cases an address for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhoneBR returns the phone digits as a number with the 55 country
// code. Digits already starting with 55 are left as they are. It reports
// false when there are no digits or the number does not fit in an int64.
func NormalizePhoneBR(phone string) (int64, bool) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, false
	}
	if !strings.HasPrefix(digits, "55") {
		digits = "55" + digits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstName is the first whitespace separated token of name.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LeadEventInput carries what a generate_lead event reports. Message is used
// for its length only.
type LeadEventInput struct {
	EventID     string
	Name        string
	Email       string
	Phone       string
	Role        string
	Message     string
	PagePath    string
	Source      string
	FormName    string
	Currency    string
	Attribution map[string]string
	OccurredAt  time.Time
}

// LeadEvent builds the generate_lead conversion event. The lead value is
// always zero.
func LeadEvent(in LeadEventInput) Event {
	fields := map[string]any{
		"event_id":            in.EventID,
		"lead_email":          NormalizeEmail(in.Email),
		"lead_full_name":      strings.TrimSpace(in.Name),
		"lead_first_name":     FirstName(in.Name),
		"lead_position":       strings.TrimSpace(in.Role),
		"lead_message_length": utf8.RuneCountInString(in.Message),
		"lead_value":          0,
		"lead_currency":       in.Currency,
		"lead_source":         in.Source,
		"lead_form_name":      in.FormName,
		"page_path":           in.PagePath,
	}
	if phone, ok := NormalizePhoneBR(in.Phone); ok {
		fields["lead_phone"] = phone
	}
	for k, v := range in.Attribution {
		if v != "" {
			fields[k] = v
		}
	}
	return Event{Name: EventGenerateLead, Fields: fields, OccurredAt: in.OccurredAt}
}

// PageView describes a page load as reported by the browser.
type PageView struct {
	Location     string `json:"page_location"`
	Path         string `json:"page_path"`
	Title        string `json:"page_title"`
	Referrer     string `json:"page_referrer"`
	Language     string `json:"page_language"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	// Landing is true for the first page of a visit.
	Landing bool `json:"-"`
}

// PageViewEvent builds the page_view event.
func PageViewEvent(pv PageView, occurredAt time.Time) Event {
	engagement := "navigation"
	if pv.Landing {
		engagement = "landing"
	}
	return Event{
		Name: EventPageView,
		Fields: map[string]any{
			"page_location":   pv.Location,
			"page_path":       pv.Path,
			"page_title":      pv.Title,
			"page_referrer":   pv.Referrer,
			"page_language":   pv.Language,
			"screen_width":    pv.ScreenWidth,
			"screen_height":   pv.ScreenHeight,
			"engagement_type": engagement,
		},
		OccurredAt: occurredAt,
	}
}
