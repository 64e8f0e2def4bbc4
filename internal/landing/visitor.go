package landing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const visitorKey ctxKey = "leadcapture.visitor"

// DefaultVisitorCookie names the long-lived visitor cookie.
const DefaultVisitorCookie = "lc_visitor"

const visitorMaxAge = 365 * 24 * 60 * 60

// Visitor identifies the browser a request came from. NewSession is true on
// the first request of a browsing session.
type Visitor struct {
	ID         string
	NewSession bool
}

// WithVisitor stores the visitor in context.
func WithVisitor(ctx context.Context, v Visitor) context.Context {
	return context.WithValue(ctx, visitorKey, v)
}

// VisitorFromContext extracts the visitor if present.
func VisitorFromContext(ctx context.Context) (Visitor, bool) {
	v, ok := ctx.Value(visitorKey).(Visitor)
	return v, ok && v.ID != ""
}

// VisitorMiddleware identifies visitors by cookie, issuing a new id when the
// cookie is missing or malformed. A second cookie without expiry marks the
// browser session.
func VisitorMiddleware(cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultVisitorCookie
	}
	sessionCookie := cookieName + "_session"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := Visitor{}
			if c, err := r.Cookie(cookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					v.ID = id.String()
				}
			}
			if v.ID == "" {
				v.ID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    v.ID,
					Path:     "/",
					MaxAge:   visitorMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			if _, err := r.Cookie(sessionCookie); err != nil {
				v.NewSession = true
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    "1",
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), v)))
		})
	}
}
