package mailer

import (
	"strings"

	"github.com/dmitrymomot/courier/pkg/mailbox"
)

// Message is a composed multipart/alternative email, ready for a
// transport. Text is the first alternative part and HTML the second,
// so clients preferring plaintext see it first per MIME convention.
type Message struct {
	From    mailbox.Mailbox
	ReplyTo *mailbox.Mailbox
	To      []mailbox.Mailbox
	Subject string
	Text    string
	HTML    string
}

// Compose assembles a message from already-validated inputs. It is a
// pure assembly step; the only check it adds is header-injection
// safety: any CR/LF in the subject, display names, or addresses fails
// with ErrInvalidHeaderValue.
func Compose(from mailbox.Mailbox, replyTo *mailbox.Mailbox, to []mailbox.Mailbox, subject, html, text string) (*Message, error) {
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}

	headers := []string{subject, from.Name, from.Address}
	if replyTo != nil {
		headers = append(headers, replyTo.Name, replyTo.Address)
	}
	for _, m := range to {
		headers = append(headers, m.Name, m.Address)
	}
	for _, h := range headers {
		if strings.ContainsAny(h, "\r\n") {
			return nil, ErrInvalidHeaderValue
		}
	}

	return &Message{
		From:    from,
		ReplyTo: replyTo,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}
