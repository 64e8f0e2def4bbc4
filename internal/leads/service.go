package leads

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

var leadsTracer = otel.Tracer("leadcapture.leads")

// Notifier is told about every accepted lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Archiver keeps an immutable copy of every accepted lead.
type Archiver interface {
	Archive(ctx context.Context, lead *Lead) error
}

// Service accepts lead requests: it re-checks required fields, stores the
// lead and runs the best-effort notification and archive hooks.
type Service struct {
	repo      Repository
	storeName string
	notifier  Notifier
	archiver  Archiver
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier sets the new-lead notifier.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithArchiver sets the lead archiver.
func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) { s.archiver = a }
}

// WithMetrics records creations under the given store label.
func WithMetrics(m *metrics.LeadMetrics, storeName string) ServiceOption {
	return func(s *Service) {
		s.metrics = m
		if storeName != "" {
			s.storeName = storeName
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a lead service over repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	s := &Service{repo: repo, storeName: "memory", logger: logging.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores req. Hook failures are logged and do not fail
// the request.
func (s *Service) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.create")
	defer span.End()
	span.SetAttributes(attribute.String("leads.store", s.storeName))

	if err := req.Validate(); err != nil {
		s.metrics.ObserveRejected("missing_field")
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	start := time.Now()
	lead, err := s.repo.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return nil, fmt.Errorf("leads: create: %w", err)
	}
	s.metrics.ObserveCreated(s.storeName, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("leads.id", lead.ID))

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, lead); err != nil {
			s.logger.Error("leads: archive failed", "lead_id", lead.ID, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
			s.logger.Error("leads: notification failed", "lead_id", lead.ID, "error", err)
		}
	}
	return lead, nil
}

// CreateLead applies the same preparation as the HTTP client and then
// Create. It lets a single binary serve the form without a network hop.
func (s *Service) CreateLead(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	prepared, err := PrepareForAPI(req)
	if err != nil {
		s.metrics.ObserveRejected("prepare")
		return nil, err
	}
	return s.Create(ctx, &prepared)
}

// Get returns a stored lead.
func (s *Service) Get(ctx context.Context, id string) (*Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// ObserveRejected counts a request refused before reaching the service.
func (s *Service) ObserveRejected(reason string) {
	s.metrics.ObserveRejected(reason)
}
