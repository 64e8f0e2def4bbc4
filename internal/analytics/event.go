// Package analytics builds tag-manager style events and hands them to
// fire-and-forget sinks.
package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	EventGenerateLead = "generate_lead"
	EventPageView     = "page_view"
)

// Event is one flat record as pushed to a data layer: a name plus
// arbitrary fields.
type Event struct {
	Name       string
	Fields     map[string]any
	OccurredAt time.Time
}

// ID returns the event_id field, if any.
func (e Event) ID() string {
	id, _ := e.Fields["event_id"].(string)
	return id
}

// MarshalJSON flattens the event as {"event": name, ...fields}.
func (e Event) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat["event"] = e.Name
	if !e.OccurredAt.IsZero() {
		flat["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(flat)
}

// DecodeEvent reverses MarshalJSON. Numbers decode as json.Number.
func DecodeEvent(data []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var flat map[string]any
	if err := dec.Decode(&flat); err != nil {
		return Event{}, fmt.Errorf("analytics: decode event: %w", err)
	}
	name, _ := flat["event"].(string)
	if name == "" {
		return Event{}, errors.New("analytics: decode event: missing event name")
	}
	delete(flat, "event")
	evt := Event{Name: name, Fields: flat}
	if ts, ok := flat["occurred_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			evt.OccurredAt = parsed
		}
		delete(flat, "occurred_at")
	}
	return evt, nil
}

// NewEventID returns a random v4 UUID. If the secure source fails it falls
// back to a pseudo-random string of the same shape.
func NewEventID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return pseudoUUID(rand.IntN)
}

func pseudoUUID(intn func(int) int) string {
	const template = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"
	const hex = "0123456789abcdef"
	out := []byte(template)
	for i, c := range out {
		switch c {
		case 'x':
			out[i] = hex[intn(16)]
		case 'y':
			out[i] = hex[intn(16)&0x3|0x8]
		}
	}
	return string(out)
}
