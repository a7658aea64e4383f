// Package outbox is a development transport that writes messages to a
// local directory instead of sending them: an .html file with the HTML
// part, a .txt file with the plaintext part, and a .json file with the
// envelope metadata.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Config holds outbox transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Dir string `env:"OUTBOX_DIR" envDefault:"outbox"`
}

// Sender implements mailer.Sender by saving messages to disk.
type Sender struct {
	dir string
}

// New creates an outbox sender. The directory is created on first send.
func New(cfg Config) *Sender {
	return &Sender{dir: cfg.Dir}
}

// envelope is the metadata written next to the message bodies.
type envelope struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	From      string   `json:"from"`
	ReplyTo   string   `json:"reply_to,omitempty"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
}

// Send writes the message files and returns a locally-generated id.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("outbox: create directory: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()
	base := filepath.Join(s.dir, fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(msg.Subject)))

	if err := os.WriteFile(base+".html", []byte(msg.HTML), 0o644); err != nil {
		return "", fmt.Errorf("outbox: write html: %w", err)
	}
	if err := os.WriteFile(base+".txt", []byte(msg.Text), 0o644); err != nil {
		return "", fmt.Errorf("outbox: write text: %w", err)
	}

	to := make([]string, len(msg.To))
	for i, mb := range msg.To {
		to[i] = mb.String()
	}
	env := envelope{
		ID:        id,
		Timestamp: now.Format(time.RFC3339),
		From:      msg.From.String(),
		To:        to,
		Subject:   msg.Subject,
	}
	if msg.ReplyTo != nil {
		env.ReplyTo = msg.ReplyTo.String()
	}

	meta, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("outbox: marshal metadata: %w", err)
	}
	if err := os.WriteFile(base+".json", meta, 0o644); err != nil {
		return "", fmt.Errorf("outbox: write metadata: %w", err)
	}

	return id, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename turns a subject line into a safe, lowercased file
// name stem, truncated to a filesystem-friendly length.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
