package smtp

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailbox"
	"github.com/dmitrymomot/courier/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s := New(Config{
		Host:     "smtp.acme.test",
		Port:     587,
		Username: "user",
		Password: "pass",
		Timeout:  15 * time.Second,
	})

	assert.Equal(t, "smtp.acme.test", s.dialer.Host)
	assert.Equal(t, 587, s.dialer.Port)
	assert.Nil(t, s.dialer.TLSConfig)

	s = New(Config{Host: "h", Port: 25, InsecureSkipVerify: true})
	require.NotNil(t, s.dialer.TLSConfig)
	assert.True(t, s.dialer.TLSConfig.InsecureSkipVerify)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	replyTo := mailbox.Mailbox{Address: "support@acme.test"}
	msg := &mailer.Message{
		From:    mailbox.Mailbox{Name: "Acme", Address: "noreply@acme.test"},
		ReplyTo: &replyTo,
		To: []mailbox.Mailbox{
			{Address: "alice@example.com"},
			{Name: "Bob", Address: "bob@example.com"},
		},
		Subject: "Hello there",
		Text:    "plain words",
		HTML:    "<p>rich words</p>",
	}

	var buf bytes.Buffer
	_, err := buildMessage(msg).WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Subject: Hello there")
	assert.Contains(t, raw, "noreply@acme.test")
	assert.Contains(t, raw, "support@acme.test")
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "bob@example.com")
	assert.Contains(t, raw, "multipart/alternative")

	// MIME convention: plaintext alternative first, HTML second.
	plainIdx := strings.Index(raw, "text/plain")
	htmlIdx := strings.Index(raw, "text/html")
	require.GreaterOrEqual(t, plainIdx, 0)
	require.GreaterOrEqual(t, htmlIdx, 0)
	assert.Less(t, plainIdx, htmlIdx)

	assert.Contains(t, raw, "plain words")
	assert.Contains(t, raw, "rich words")
}
