package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP requests for leads
type Handler struct {
	svc    *Service
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a new leads handler
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

// CreateLead handles POST /api/leads.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeCreateRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var syntaxErr *SyntaxError
		var fieldErr *FieldError
		switch {
		case errors.As(err, &syntaxErr):
			h.svc.ObserveRejected("invalid_json")
			h.logger.Warn("lead request with invalid json", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "JSON inválido",
				"details": syntaxErr.Details(),
			})
		case errors.As(err, &fieldErr):
			h.svc.ObserveRejected("missing_field")
			h.logger.Warn("lead request rejected", "field", fieldErr.Field)
			jsonError(w, fieldErr.Message, http.StatusBadRequest)
		default:
			h.logger.Error("failed to decode lead request", "error", err)
			jsonError(w, "Erro interno do servidor", http.StatusInternalServerError)
		}
		return
	}

	lead, err := h.svc.Create(r.Context(), req)
	if err != nil {
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			jsonError(w, fieldErr.Message, http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create lead", "error", err)
		jsonError(w, "Erro interno do servidor", http.StatusInternalServerError)
		return
	}

	h.logger.Info("lead created", "lead_id", lead.ID, "utm_source", lead.UTMSource)
	writeJSON(w, http.StatusCreated, lead)
}

// Status handles GET /api/leads.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "API de leads está funcionando",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

// GetLead handles GET /api/leads/{leadID}.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")
	lead, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			jsonError(w, "Lead não encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load lead", "lead_id", id, "error", err)
		jsonError(w, "Erro interno do servidor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
