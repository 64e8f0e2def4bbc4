package attribution

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

// StorageKey is the slot holding the persisted attribution JSON.
const StorageKey = "trackingData"

// Tracker merges attribution from each page load into the persisted slot.
// Reads and writes are not locked: two concurrent captures for the same slot
// resolve last-write-wins.
type Tracker struct {
	store  Store
	key    string
	logger *logging.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithScope namespaces the slot, e.g. per visitor.
func WithScope(scope string) TrackerOption {
	return func(t *Tracker) {
		if scope != "" {
			t.key = scope + ":" + StorageKey
		}
	}
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(logger *logging.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a Tracker over store.
func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	if store == nil {
		panic("attribution: store required")
	}
	t := &Tracker{store: store, key: StorageKey, logger: logging.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Capture records the attribution found in pageURL and returns the
// accumulated mapping. Without tracking parameters nothing is written and the
// stored mapping is returned as is. A malformed URL is logged; the
// parameters that could still be read are captured. Only store failures are
// returned.
func (t *Tracker) Capture(ctx context.Context, pageURL string) (Params, error) {
	current, err := FromURL(pageURL)
	if err != nil {
		t.logger.Warn("attribution: malformed page url", "slot", t.key, "error", err, "kept", len(current))
	}
	return t.capture(ctx, current)
}

// CaptureQuery is Capture for an already parsed query string.
func (t *Tracker) CaptureQuery(ctx context.Context, q url.Values) (Params, error) {
	return t.capture(ctx, FromQuery(q))
}

func (t *Tracker) capture(ctx context.Context, current Params) (Params, error) {
	stored, err := t.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return stored, nil
	}

	merged := stored.Merge(current)
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("attribution: marshal: %w", err)
	}
	if err := t.store.Set(ctx, t.key, string(data)); err != nil {
		return nil, fmt.Errorf("attribution: persist: %w", err)
	}
	t.logger.Debug("attribution captured", "slot", t.key, "new", current, "merged", merged)
	return merged, nil
}

// Load returns the persisted mapping, empty when nothing was stored. A slot
// holding invalid JSON is logged and treated as empty.
func (t *Tracker) Load(ctx context.Context) (Params, error) {
	raw, ok, err := t.store.Get(ctx, t.key)
	if err != nil {
		return nil, fmt.Errorf("attribution: load: %w", err)
	}
	if !ok || raw == "" {
		return Params{}, nil
	}
	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.logger.Warn("attribution: discarding unreadable slot", "slot", t.key, "error", err)
		return Params{}, nil
	}
	return Params(stored).Clone(), nil
}
