// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

const (
	healthyMessage   = "API está funcionando corretamente"
	unavailableError = "Banco de dados indisponível"
	pingTimeout      = 2 * time.Second
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers /health and /ready.
type Handler struct {
	version string
	db      Pinger
	now     func() time.Time
	logger  *logging.Logger
}

// NewHandler creates a health handler. db may be nil when the service runs
// without a database.
func NewHandler(version string, db Pinger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{version: version, db: db, now: time.Now, logger: logger}
}

// Payload is the liveness body served on every health call.
func Payload(version string, now time.Time) map[string]string {
	return map[string]string{
		"status":    "healthy",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"message":   healthyMessage,
		"version":   version,
	}
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Payload(h.version, h.now()))
}

// Ready reports whether the database answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("health: database ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  unavailableError,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
