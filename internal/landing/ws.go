package landing

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/leadcapture/internal/form"
)

// FieldUpdate is sent by the page as the visitor types.
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FieldFeedback is the answer to one FieldUpdate. Formatted is the value the
// field should display; State is the phone's state when known.
type FieldFeedback struct {
	Field     string `json:"field"`
	Formatted string `json:"formatted"`
	State     string `json:"state,omitempty"`
	Error     string `json:"error,omitempty"`
}

const unknownFieldMessage = "Campo desconhecido"

// Feedback computes the live feedback for a single field edit. It holds no
// state and does not touch the visitor's form.
func (h *Handler) Feedback(u FieldUpdate) FieldFeedback {
	field := form.Field(u.Field)
	var probe form.Input
	if !probe.Set(field, u.Value) {
		return FieldFeedback{Field: u.Field, Formatted: u.Value, Error: unknownFieldMessage}
	}

	out := FieldFeedback{Field: u.Field, Formatted: u.Value}
	if field == form.FieldPhone {
		out.Formatted = form.FormatPhone(u.Value)
		if state, ok := form.StateFromPhone(u.Value); ok {
			out.State = state
		}
	}
	if msg, ok := h.validator.ValidateField(field, out.Formatted); !ok {
		out.Error = msg
	}
	return out
}

// HandleFormSocket upgrades to WebSocket and answers each field update with
// its feedback.
func (h *Handler) HandleFormSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveFormSocket(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveFormSocket(conn *websocket.Conn, r *http.Request) {
	visitor, _ := VisitorFromContext(r.Context())
	h.logger.Debug("landing: form socket opened", "visitor_id", visitor.ID)
	for {
		var u FieldUpdate
		if err := websocket.JSON.Receive(conn, &u); err != nil {
			h.logger.Debug("landing: form socket closed", "visitor_id", visitor.ID, "error", err)
			return
		}
		if err := websocket.JSON.Send(conn, h.Feedback(u)); err != nil {
			h.logger.Debug("landing: form socket send failed", "visitor_id", visitor.ID, "error", err)
			return
		}
	}
}
