package analytics

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

var analyticsTracer = otel.Tracer("leadcapture.analytics")

// Sink accepts event records. Callers never depend on a sink succeeding.
type Sink interface {
	Emit(ctx context.Context, evt Event) error
}

// MemorySink keeps events in order, like a browser data layer.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(ctx context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// LogSink writes events to the structured log.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, evt Event) error {
	s.logger.Info("analytics event", "event", evt.Name, "event_id", evt.ID(), "fields", evt.Fields)
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher fires events without letting sink failures reach the caller.
type Dispatcher struct {
	sink    Sink
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewDispatcher wraps sink. A nil sink drops events.
func NewDispatcher(sink Sink, logger *logging.Logger, m *metrics.LeadMetrics) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sink: sink, logger: logger, metrics: m}
}

// Fire emits evt, logging and counting failures.
func (d *Dispatcher) Fire(ctx context.Context, evt Event) {
	if d == nil || d.sink == nil {
		return
	}
	ctx, span := analyticsTracer.Start(ctx, "analytics.fire")
	defer span.End()
	span.SetAttributes(
		attribute.String("analytics.event", evt.Name),
		attribute.String("analytics.event_id", evt.ID()),
	)

	if err := d.sink.Emit(ctx, evt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "emit failed")
		d.metrics.ObserveEvent(evt.Name, "error")
		d.logger.Warn("analytics: emit failed", "event", evt.Name, "event_id", evt.ID(), "error", err)
		return
	}
	d.metrics.ObserveEvent(evt.Name, "ok")
}
