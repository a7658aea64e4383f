package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/courier/pkg/mailbox"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/render"
)

type handler struct {
	dispatcher Dispatcher
	log        *slog.Logger
}

// sendRequest is the POST /send payload. Subject is optional: the
// template frontmatter or the configured fallback fills it in.
type sendRequest struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Vars     map[string]any `json:"vars"`
}

func (h *handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Template == "" {
		writeError(w, http.StatusBadRequest, "template is required")
		return
	}

	id, err := h.dispatcher.Send(r.Context(), mailer.SendParams{
		To:       req.To,
		Subject:  req.Subject,
		Template: req.Template,
		Vars:     render.VarsFromJSON(req.Vars),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "send failed",
			slog.String("template", req.Template),
			slog.String("error", err.Error()),
		)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// statusFor maps pipeline errors onto HTTP status codes: unknown
// templates are 404, anything the caller can fix is 422, the rest is a
// server-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, render.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, render.ErrUndefinedVariable),
		errors.Is(err, render.ErrRender),
		errors.Is(err, mailbox.ErrInvalidMailbox),
		errors.Is(err, mailbox.ErrEmptyRecipientList),
		errors.Is(err, mailer.ErrInvalidHeaderValue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
