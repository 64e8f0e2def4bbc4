// Package attribution captures campaign parameters (UTM tags and ad click
// ids) from landing URLs and keeps them across page views.
package attribution

import (
	"net/url"
	"strings"
)

// Keys is the allow-list of query parameters treated as attribution.
var Keys = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"gclid",
	"fbclid",
}

// Params is a flat attribution mapping restricted to Keys. Only non-empty
// values are kept.
type Params map[string]string

// IsKey reports whether key is on the allow-list.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// FromQuery picks allow-listed parameters with a non-blank value.
func FromQuery(q url.Values) Params {
	p := Params{}
	for _, key := range Keys {
		if v := q.Get(key); strings.TrimSpace(v) != "" {
			p[key] = v
		}
	}
	return p
}

// FromURL returns the attribution parameters in the query of rawURL. It
// accepts full URLs, paths with a query, or a bare query string. The query is
// read on its own, so a bad escape elsewhere in the URL or in an unrelated
// pair does not hide valid parameters: the pairs that could be read are
// returned together with the first parse error.
func FromURL(rawURL string) (Params, error) {
	rawURL = strings.TrimSpace(rawURL)
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	if rawURL == "" {
		return Params{}, nil
	}
	i := strings.IndexByte(rawURL, '?')
	if i < 0 {
		if _, err := url.Parse(rawURL); err != nil {
			return Params{}, err
		}
		return Params{}, nil
	}
	q, err := url.ParseQuery(rawURL[i+1:])
	return FromQuery(q), err
}

// Merge returns a new mapping holding p overlaid with every non-empty value
// of over. Keys missing from over keep their value from p.
func (p Params) Merge(over Params) Params {
	out := p.Clone()
	for k, v := range over {
		if v != "" && IsKey(k) {
			out[k] = v
		}
	}
	return out
}

// Clone copies the allow-listed, non-empty entries of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if v != "" && IsKey(k) {
			out[k] = v
		}
	}
	return out
}

// Get returns the value for key, or "".
func (p Params) Get(key string) string {
	return p[key]
}

// Session is the in-memory view of the current page: its attribution and
// referrer. Nothing in it is persisted.
type Session struct {
	Params   Params
	Referrer string
}

// NewSession reads the attribution of the page the visitor is on. Parse
// errors are ignored; whatever parameters could be read are kept.
func NewSession(pageURL, referrer string) Session {
	p, _ := FromURL(pageURL)
	return Session{Params: p, Referrer: strings.TrimSpace(referrer)}
}
