package leads

import (
	"strings"
	"time"
)

// CreateLeadRequest is a contact form submission as received by the lead
// endpoint. Attribution fields are optional and omitted when empty.
type CreateLeadRequest struct {
	Name      string `json:"name" dynamodbav:"name"`
	Email     string `json:"email" dynamodbav:"email"`
	Phone     string `json:"phone" dynamodbav:"phone"`
	Position  string `json:"position" dynamodbav:"position"`
	BirthDate string `json:"birthDate" dynamodbav:"birthDate"`
	Message   string `json:"message" dynamodbav:"message"`

	UTMSource   string `json:"utm_source,omitempty" dynamodbav:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty" dynamodbav:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty" dynamodbav:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty" dynamodbav:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty" dynamodbav:"utm_content,omitempty"`
	Gclid       string `json:"gclid,omitempty" dynamodbav:"gclid,omitempty"`
	Fbclid      string `json:"fbclid,omitempty" dynamodbav:"fbclid,omitempty"`
}

// Lead is a stored submission.
type Lead struct {
	ID string `json:"id" dynamodbav:"id"`
	CreateLeadRequest
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// RequiredFields lists the wire names the lead endpoint insists on, in the
// order they are checked.
var RequiredFields = []string{"name", "email", "phone", "position", "birthDate", "message"}

// AttributionFields lists the optional attribution wire names.
var AttributionFields = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "gclid", "fbclid"}

func (r *CreateLeadRequest) field(name string) *string {
	switch name {
	case "name":
		return &r.Name
	case "email":
		return &r.Email
	case "phone":
		return &r.Phone
	case "position":
		return &r.Position
	case "birthDate":
		return &r.BirthDate
	case "message":
		return &r.Message
	case "utm_source":
		return &r.UTMSource
	case "utm_medium":
		return &r.UTMMedium
	case "utm_campaign":
		return &r.UTMCampaign
	case "utm_term":
		return &r.UTMTerm
	case "utm_content":
		return &r.UTMContent
	case "gclid":
		return &r.Gclid
	case "fbclid":
		return &r.Fbclid
	}
	return nil
}

// Get returns the value stored under a wire name.
func (r CreateLeadRequest) Get(name string) string {
	if p := r.field(name); p != nil {
		return *p
	}
	return ""
}

// Set assigns a value by wire name and reports whether the name is known.
func (r *CreateLeadRequest) Set(name, value string) bool {
	p := r.field(name)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Attribution returns the non-empty attribution fields.
func (r CreateLeadRequest) Attribution() map[string]string {
	out := make(map[string]string)
	for _, name := range AttributionFields {
		if v := r.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}

// Validate re-checks that every required field is non-blank. It does not
// apply the phone, email or date rules of the form.
func (r *CreateLeadRequest) Validate() error {
	for _, name := range RequiredFields {
		if strings.TrimSpace(r.Get(name)) == "" {
			return requiredFieldError(name)
		}
	}
	return nil
}
