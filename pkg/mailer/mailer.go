// Package mailer renders templated emails and hands them to a
// transport. It ties the pipeline together: recipient parsing,
// template rendering, plaintext derivation, multipart composition,
// and delivery through the Sender interface.
package mailer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/courier/pkg/mailbox"
	"github.com/dmitrymomot/courier/pkg/plaintext"
	"github.com/dmitrymomot/courier/pkg/render"
)

// Mailer renders and dispatches transactional emails.
type Mailer struct {
	sender   Sender
	registry *render.Registry
	log      *slog.Logger

	from            mailbox.Mailbox
	replyTo         *mailbox.Mailbox
	fallbackSubject string
}

// New builds a Mailer from validated configuration. The From address
// must parse; an empty ReplyTo is allowed and omitted from messages.
func New(sender Sender, registry *render.Registry, cfg Config, log *slog.Logger) (*Mailer, error) {
	from, err := mailbox.Parse(cfg.From)
	if err != nil {
		return nil, err
	}

	var replyTo *mailbox.Mailbox
	if cfg.ReplyTo != "" {
		rt, err := mailbox.Parse(cfg.ReplyTo)
		if err != nil {
			return nil, err
		}
		replyTo = &rt
	}

	if log == nil {
		log = slog.Default()
	}

	return &Mailer{
		sender:          sender,
		registry:        registry,
		log:             log,
		from:            from,
		replyTo:         replyTo,
		fallbackSubject: cfg.FallbackSubject,
	}, nil
}

// SendParams describes one dispatch request.
type SendParams struct {
	To       string      // comma-separated recipient list
	Subject  string      // optional; falls back to template frontmatter, then config
	Template string      // template name without extension
	Vars     render.Vars // per-request variables
}

// Send runs the full pipeline and returns the transport message id.
//
// Failures are typed and fail fast: recipient and render errors come
// back unwrapped for the caller to map onto its own responses, and
// transport errors are wrapped with ErrSendFailed.
func (m *Mailer) Send(ctx context.Context, params SendParams) (string, error) {
	to, err := mailbox.ParseList(params.To)
	if err != nil {
		return "", err
	}

	html, err := m.registry.Render(params.Template, params.Vars)
	if err != nil {
		return "", err
	}

	subject := params.Subject
	if subject == "" {
		if meta, err := m.registry.Meta(params.Template); err == nil && meta.Subject != "" {
			subject = meta.Subject
		}
	}
	if subject == "" {
		subject = m.fallbackSubject
	}

	msg, err := Compose(m.from, m.replyTo, to, subject, html, plaintext.Derive(html))
	if err != nil {
		return "", err
	}

	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}

	m.log.InfoContext(ctx, "email sent",
		slog.String("template", params.Template),
		slog.Int("recipients", len(to)),
		slog.String("message_id", id),
	)
	return id, nil
}
