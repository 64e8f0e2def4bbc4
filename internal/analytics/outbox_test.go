package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestOutboxSinkInserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	sink := NewOutboxSink(newOutboxStoreWithExec(mock))
	mock.ExpectExec("INSERT INTO analytics_outbox").
		WithArgs(pgxmock.AnyArg(), EventGenerateLead, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := sink.Emit(context.Background(), Event{Name: EventGenerateLead}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererDrain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	good := uuid.New()
	bad := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT id, event_name, payload, created_at").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_name", "payload", "created_at"}).
			AddRow(good, "page_view", []byte(`{"event":"page_view","page_path":"/"}`), now).
			AddRow(bad, "page_view", []byte(`{}`), now))
	mock.ExpectExec("UPDATE analytics_outbox").WithArgs(good).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE analytics_outbox").WithArgs(bad).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	target := NewMemorySink()
	d := NewDeliverer(newOutboxStoreWithExec(mock), target, nil).WithBatchSize(10).WithInterval(time.Second)
	if got := d.Drain(context.Background()); got != 1 {
		t.Fatalf("expected 1 delivered, got %d", got)
	}
	events := target.Events()
	if len(events) != 1 || events[0].Name != "page_view" || events[0].Fields["page_path"] != "/" {
		t.Fatalf("unexpected delivered events: %#v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererKeepsFailedEntriesPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT id, event_name, payload, created_at").
		WithArgs(int32(25)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_name", "payload", "created_at"}).
			AddRow(uuid.New(), "generate_lead", []byte(`{"event":"generate_lead"}`), time.Now()))

	d := NewDeliverer(newOutboxStoreWithExec(mock), errSink{err: errors.New("down")}, nil)
	if got := d.Drain(context.Background()); got != 0 {
		t.Fatalf("expected nothing delivered, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		NewDeliverer(&OutboxStore{}, NewMemorySink(), nil).WithInterval(time.Hour).Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop")
	}
}
