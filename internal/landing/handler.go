// Package landing serves the landing page backend: attribution capture on
// page views, contact form submission and live field feedback.
package landing

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/leadcapture/internal/analytics"
	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/layout"
	"github.com/wolfman30/leadcapture/internal/leadclient"
	"github.com/wolfman30/leadcapture/internal/submission"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

const (
	maxBodyBytes   = 64 << 10
	successMessage = "Obrigado pelo seu contato. Nossa equipe entrará em contato em breve."
	pendingMessage = "Envio em andamento"
)

// Handler serves the landing page endpoints. Each visitor has at most one
// form with a submission in flight.
type Handler struct {
	store     attribution.Store
	submitter submission.Submitter
	validator *form.Validator
	layout    *layout.Resolver
	events    *analytics.Dispatcher
	now       func() time.Time
	logger    *logging.Logger

	mu    sync.Mutex
	forms map[string]*submission.Form
}

// Option configures a Handler.
type Option func(*Handler)

// WithLayout resolves the page variant on page views.
func WithLayout(r *layout.Resolver) Option {
	return func(h *Handler) { h.layout = r }
}

// WithEvents sets where page_view events go.
func WithEvents(d *analytics.Dispatcher) Option {
	return func(h *Handler) { h.events = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a landing handler.
func NewHandler(store attribution.Store, submitter submission.Submitter, validator *form.Validator, opts ...Option) *Handler {
	if store == nil {
		panic("landing: attribution store required")
	}
	if submitter == nil {
		panic("landing: submitter required")
	}
	if validator == nil {
		panic("landing: validator required")
	}
	h := &Handler{
		store:     store,
		submitter: submitter,
		validator: validator,
		now:       time.Now,
		logger:    logging.Default(),
		forms:     make(map[string]*submission.Form),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) tracker(visitorID string) *attribution.Tracker {
	return attribution.NewTracker(h.store,
		attribution.WithScope(visitorID),
		attribution.WithTrackerLogger(h.logger),
	)
}

// PageViewResponse tells the page which variant to render and what
// attribution the visitor carries.
type PageViewResponse struct {
	VisitorID     string             `json:"visitor_id"`
	Attribution   attribution.Params `json:"attribution"`
	LayoutVariant int                `json:"layout_variant"`
}

// PageView captures attribution from the page URL, reports the view and
// resolves the layout variant.
func (h *Handler) PageView(w http.ResponseWriter, r *http.Request) {
	visitor, ok := VisitorFromContext(r.Context())
	if !ok {
		jsonError(w, "Visitante não identificado", http.StatusBadRequest)
		return
	}
	var pv analytics.PageView
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&pv); err != nil {
		jsonError(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	params, err := h.tracker(visitor.ID).Capture(r.Context(), pv.Location)
	if err != nil {
		h.logger.Warn("landing: attribution capture failed", "visitor_id", visitor.ID, "error", err)
		params = attribution.Params{}
	}

	if pv.Path == "" {
		pv.Path = fullPath(pv.Location)
	}
	pv.Landing = visitor.NewSession
	h.events.Fire(r.Context(), analytics.PageViewEvent(pv, h.now()))

	variant, err := h.layout.Variant(r.Context())
	if err != nil {
		h.logger.Warn("landing: layout fallback", "variant", variant, "error", err)
	}

	writeJSON(w, http.StatusOK, PageViewResponse{
		VisitorID:     visitor.ID,
		Attribution:   params,
		LayoutVariant: variant,
	})
}

// ContactRequest is the contact form as posted by the page. PageURL is the
// full address of the page the form was submitted from.
type ContactRequest struct {
	form.Input
	PageURL string `json:"page_url"`
}

// Contact submits the visitor's form.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	visitor, ok := VisitorFromContext(r.Context())
	if !ok {
		jsonError(w, "Visitante não identificado", http.StatusBadRequest)
		return
	}
	var req ContactRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	current := attribution.NewSession(req.PageURL, r.Referer()).Params
	persisted, err := h.tracker(visitor.ID).Load(r.Context())
	if err != nil {
		h.logger.Warn("landing: load attribution failed", "visitor_id", visitor.ID, "error", err)
		persisted = attribution.Params{}
	}

	f := h.form(visitor.ID)
	f.Fill(req.Input)
	res, err := f.Submit(r.Context(), current, persisted, pagePath(req.PageURL))
	if errors.Is(err, submission.ErrSubmissionPending) {
		jsonError(w, pendingMessage, http.StatusConflict)
		return
	}
	h.release(visitor.ID, f)

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Errors})
	case err != nil:
		h.logger.Warn("landing: submission failed", "visitor_id", visitor.ID, "error", err)
		jsonError(w, leadclient.UserMessage(err), http.StatusBadGateway)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"lead_id":  res.Lead.ID,
			"event_id": res.EventID,
			"message":  successMessage,
		})
	}
}

func (h *Handler) form(visitorID string) *submission.Form {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.forms[visitorID]
	if !ok {
		f = submission.NewForm(h.submitter)
		h.forms[visitorID] = f
	}
	return f
}

// release forgets a form once nothing is in flight for it.
func (h *Handler) release(visitorID string, f *submission.Form) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.forms[visitorID] == f && !f.Pending() {
		delete(h.forms, visitorID)
	}
}

func (h *Handler) inFlight() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.forms)
}

// pagePath returns the path of a page URL without its query.
func pagePath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// fullPath returns the path of a page URL followed by its query, as page
// views report it.
func fullPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return ""
	}
	base, query, hasQuery := strings.Cut(raw, "?")
	path := pagePath(base)
	if path == "" {
		path = "/"
	}
	if hasQuery && query != "" {
		return path + "?" + query
	}
	return path
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
