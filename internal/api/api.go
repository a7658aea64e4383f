// Package api exposes the dispatch pipeline over HTTP: a single
// POST /send endpoint plus a health probe, behind optional bearer-token
// auth.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Config holds HTTP API configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Token guards POST /send. Empty disables auth for local
	// development.
	Token string `env:"API_TOKEN"`
}

// Dispatcher renders and sends a message, returning a transport id.
type Dispatcher interface {
	Send(ctx context.Context, params mailer.SendParams) (string, error)
}

// NewRouter wires the HTTP surface. A nil logger falls back to
// slog.Default.
func NewRouter(d Dispatcher, cfg Config, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &handler{dispatcher: d, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(cfg.Token))
		r.Post("/send", h.send)
	})
	return r
}
