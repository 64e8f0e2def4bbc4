package analytics

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadcapture/internal/observability/metrics"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

type errSink struct{ err error }

func (s errSink) Emit(context.Context, Event) error { return s.err }

func TestMemorySinkKeepsOrder(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()
	require.NoError(t, sink.Emit(ctx, Event{Name: "a"}))
	require.NoError(t, sink.Emit(ctx, Event{Name: "b"}))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Name)
	assert.Equal(t, "b", events[1].Name)
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	mem := NewMemorySink()
	boom := errors.New("boom")
	err := MultiSink{mem, nil, errSink{err: boom}}.Emit(context.Background(), Event{Name: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Events(), 1)
}

func TestLogSinkWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logging.NewWithWriter("info", &buf))
	require.NoError(t, sink.Emit(context.Background(), Event{Name: EventPageView, Fields: map[string]any{"event_id": "e1"}}))
	assert.True(t, strings.Contains(buf.String(), `"event_id":"e1"`), buf.String())
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.NewLeadMetrics(prometheus.NewRegistry())
	d := NewDispatcher(errSink{err: errors.New("queue down")}, logging.NewWithWriter("info", &buf), m)

	assert.NotPanics(t, func() { d.Fire(context.Background(), Event{Name: EventGenerateLead}) })
	assert.Contains(t, buf.String(), "queue down")

	var nilDispatcher *Dispatcher
	assert.NotPanics(t, func() { nilDispatcher.Fire(context.Background(), Event{}) })
	assert.NotPanics(t, func() { NewDispatcher(nil, nil, nil).Fire(context.Background(), Event{}) })
}
