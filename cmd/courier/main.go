// Command courier serves the transactional email API: it loads the
// template registry at boot, wires the configured transport, and
// exposes POST /send over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/courier/internal/api"
	"github.com/dmitrymomot/courier/pkg/config"
	"github.com/dmitrymomot/courier/pkg/httpserver"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/outbox"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
	"github.com/dmitrymomot/courier/pkg/render"
)

type appConfig struct {
	Transport string `env:"MAIL_TRANSPORT" envDefault:"file"`

	Log       logger.Config
	Server    httpserver.Config
	API       api.Config
	Mail      mailer.Config
	Templates render.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, api.RequestIDExtractor())

	registry, err := render.Load(cfg.Templates.TemplatesDir)
	if err != nil {
		log.Error("template load failed",
			slog.String("dir", cfg.Templates.TemplatesDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	log.Info("templates loaded",
		slog.String("dir", cfg.Templates.TemplatesDir),
		slog.Int("count", len(registry.Names())),
	)

	sender, err := newSender(cfg.Transport)
	if err != nil {
		log.Error("transport setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("transport ready", slog.String("transport", cfg.Transport))

	m, err := mailer.New(sender, registry, cfg.Mail, log)
	if err != nil {
		log.Error("mailer setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server, log)
	if err := srv.Run(context.Background(), api.NewRouter(m, cfg.API, log)); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newSender builds the transport named by MAIL_TRANSPORT. Transport
// credentials are parsed lazily so an smtp-only variable is not
// required when the outbox is in use.
func newSender(transport string) (mailer.Sender, error) {
	switch strings.ToLower(transport) {
	case "smtp":
		var cfg smtp.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		return smtp.New(cfg), nil
	case "resend":
		var cfg resend.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		return resend.New(cfg), nil
	case "file":
		var cfg outbox.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		return outbox.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", transport)
	}
}
