package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

// OutboxEntry is a stored event waiting for delivery.
type OutboxEntry struct {
	ID        uuid.UUID
	Name      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore persists events in Postgres so they survive a sink outage.
type OutboxStore struct {
	db execQuerier
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("analytics: pgx pool required")
	}
	return &OutboxStore{db: pool}
}

func newOutboxStoreWithExec(db execQuerier) *OutboxStore {
	if db == nil {
		panic("analytics: exec required")
	}
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Insert(ctx context.Context, evt Event) (uuid.UUID, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("analytics: marshal payload: %w", err)
	}
	id := uuid.New()
	query := `
		INSERT INTO analytics_outbox (id, event_name, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.Exec(ctx, query, id, evt.Name, data); err != nil {
		return uuid.Nil, fmt.Errorf("analytics: insert outbox: %w", err)
	}
	return id, nil
}

func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, event_name, payload, created_at
		FROM analytics_outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.Name, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("analytics: scan outbox: %w", err)
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE analytics_outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("analytics: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// OutboxSink stores events for the Deliverer instead of sending them.
type OutboxSink struct {
	store *OutboxStore
}

func NewOutboxSink(store *OutboxStore) *OutboxSink {
	if store == nil {
		panic("analytics: outbox store required")
	}
	return &OutboxSink{store: store}
}

func (s *OutboxSink) Emit(ctx context.Context, evt Event) error {
	_, err := s.store.Insert(ctx, evt)
	return err
}

// Deliverer polls the outbox and forwards entries to a sink.
type Deliverer struct {
	store     *OutboxStore
	target    Sink
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, target Sink, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		target:    target,
		logger:    logger,
		batchSize: 25,
		interval:  5 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// Start drains the outbox on every tick until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.target == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain delivers one batch. Entries that fail stay pending for the next
// tick.
func (d *Deliverer) Drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		evt, err := DecodeEvent(entry.Payload)
		if err != nil {
			d.logger.Error("outbox entry unreadable, dropping", "error", err, "outbox_id", entry.ID)
			if _, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
				d.logger.Error("failed to drop outbox entry", "error", err, "outbox_id", entry.ID)
			}
			continue
		}
		if err := d.target.Emit(ctx, evt); err != nil {
			d.logger.Error("outbox delivery failed", "error", err, "outbox_id", entry.ID, "event", entry.Name)
			continue
		}
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark outbox delivered", "error", err, "outbox_id", entry.ID)
		} else if ok {
			delivered++
			d.logger.Debug("outbox delivered", "outbox_id", entry.ID, "event", entry.Name)
		}
	}
	return delivered
}
