// Package submission turns a filled contact form into a stored lead and a
// generate_lead analytics event.
package submission

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/leadcapture/internal/analytics"
	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

var submissionTracer = otel.Tracer("leadcapture.submission")

// Submission outcomes reported to metrics.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Default lead tagging.
const (
	DefaultSource   = "form_home"
	DefaultFormName = "contact_home_main"
	DefaultCurrency = "BRL"
)

// LeadCreator sends an assembled record to the lead endpoint.
// *leadclient.Client satisfies it.
type LeadCreator interface {
	CreateLead(ctx context.Context, req leads.CreateLeadRequest) (*leads.Lead, error)
}

// Submission is one submit attempt. Current is the attribution read from the
// page being viewed, Persisted the accumulated attribution of the visitor.
type Submission struct {
	Input     form.Input
	Current   attribution.Params
	Persisted attribution.Params
	PagePath  string
}

// Result describes an accepted submission. EventID identifies the analytics
// event only; the lead keeps its own backend-assigned ID.
type Result struct {
	Lead    *leads.Lead
	EventID string
}

// Assembler validates, sends and reports submissions.
type Assembler struct {
	validator *form.Validator
	creator   LeadCreator
	events    *analytics.Dispatcher
	newID     func() string
	now       func() time.Time
	source    string
	formName  string
	currency  string
	logger    *logging.Logger
	metrics   *metrics.LeadMetrics
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithEvents sets where generate_lead events go. Without it events are
// dropped.
func WithEvents(d *analytics.Dispatcher) Option {
	return func(a *Assembler) { a.events = d }
}

// WithEventIDs overrides analytics.NewEventID.
func WithEventIDs(fn func() string) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithTagging sets the lead source, form name and currency reported in
// events. Empty values keep the defaults.
func WithTagging(source, formName, currency string) Option {
	return func(a *Assembler) {
		if source != "" {
			a.source = source
		}
		if formName != "" {
			a.formName = formName
		}
		if currency != "" {
			a.currency = currency
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records submission outcomes.
func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(a *Assembler) { a.metrics = m }
}

// NewAssembler creates an Assembler.
func NewAssembler(v *form.Validator, creator LeadCreator, opts ...Option) *Assembler {
	if v == nil {
		panic("submission: validator required")
	}
	if creator == nil {
		panic("submission: lead creator required")
	}
	a := &Assembler{
		validator: v,
		creator:   creator,
		newID:     analytics.NewEventID,
		now:       time.Now,
		source:    DefaultSource,
		formName:  DefaultFormName,
		currency:  DefaultCurrency,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble maps a form onto the outbound record. The current page's
// attribution is applied first; non-empty persisted values then overwrite
// it key by key.
func Assemble(in form.Input, current, persisted attribution.Params) leads.CreateLeadRequest {
	n := form.Normalize(in)
	req := leads.CreateLeadRequest{
		Name:      n.Name,
		Email:     n.Email,
		Phone:     n.Phone,
		Position:  n.Role,
		BirthDate: n.BirthDate,
		Message:   n.Message,
	}
	for k, v := range current.Merge(persisted) {
		req.Set(k, v)
	}
	return req
}

// Submit validates s, sends the lead once and fires the generate_lead
// event. Invalid input returns *form.ValidationError without any request.
func (a *Assembler) Submit(ctx context.Context, s Submission) (*Result, error) {
	ctx, span := submissionTracer.Start(ctx, "submission.submit")
	defer span.End()

	if errs := a.validator.Validate(s.Input); errs.HasFieldErrors() {
		a.metrics.ObserveSubmission(OutcomeInvalid)
		span.SetAttributes(attribute.StringSlice("submission.invalid_fields", errs.Fields()))
		return nil, &form.ValidationError{Errors: errs}
	}

	req := Assemble(s.Input, s.Current, s.Persisted)
	lead, err := a.creator.CreateLead(ctx, req)
	if err != nil {
		a.metrics.ObserveSubmission(OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create lead failed")
		a.logger.Error("submission: create lead failed", "error", err)
		return nil, err
	}
	if lead == nil {
		err := errors.New("submission: empty lead response")
		a.metrics.ObserveSubmission(OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	eventID := a.newID()
	span.SetAttributes(
		attribute.String("lead.id", lead.ID),
		attribute.String("analytics.event_id", eventID),
	)
	a.events.Fire(ctx, analytics.LeadEvent(analytics.LeadEventInput{
		EventID:     eventID,
		Name:        s.Input.Name,
		Email:       s.Input.Email,
		Phone:       req.Phone,
		Role:        s.Input.Role,
		Message:     s.Input.Message,
		PagePath:    s.PagePath,
		Source:      a.source,
		FormName:    a.formName,
		Currency:    a.currency,
		Attribution: req.Attribution(),
		OccurredAt:  a.now(),
	}))

	a.metrics.ObserveSubmission(OutcomeSuccess)
	a.logger.Info("lead submitted", "lead_id", lead.ID, "event_id", eventID)
	return &Result{Lead: lead, EventID: eventID}, nil
}
