// Package smtp delivers composed messages over SMTP with STARTTLS.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Config holds SMTP transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host               string        `env:"SMTP_HOST,required"`
	Port               int           `env:"SMTP_PORT" envDefault:"587"`
	Username           string        `env:"SMTP_USERNAME,required"`
	Password           string        `env:"SMTP_PASSWORD,required"`
	Timeout            time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
	InsecureSkipVerify bool          `env:"SMTP_INSECURE_SKIP_VERIFY"`
}

// Sender implements mailer.Sender over a STARTTLS SMTP connection.
type Sender struct {
	dialer  *gomail.Dialer
	timeout time.Duration
}

// New creates an SMTP sender. Credentials are authenticated on each
// send; the dialer holds no persistent connection.
func New(cfg Config) *Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit operator opt-in for test servers
	}
	return &Sender{dialer: d, timeout: cfg.Timeout}
}

// Send transmits the message and returns a locally-generated message
// id: SMTP itself assigns none that the client can observe.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := buildMessage(msg)

	// gomail has no context support; run the dial in a goroutine so a
	// cancelled request does not hang on a stuck server.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("smtp: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp: %w", err)
		}
	}

	return uuid.NewString(), nil
}

// buildMessage maps the composed message onto a gomail message. The
// text part is added first so the multipart/alternative order puts
// plaintext before HTML.
func buildMessage(msg *mailer.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From.Address, msg.From.Name)
	if msg.ReplyTo != nil {
		m.SetAddressHeader("Reply-To", msg.ReplyTo.Address, msg.ReplyTo.Name)
	}

	to := make([]string, len(msg.To))
	for i, mb := range msg.To {
		to[i] = m.FormatAddress(mb.Address, mb.Name)
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)

	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	return m
}
