// Package mailbox parses and validates email addresses and recipient lists.
//
// A Mailbox is an optional display name plus a validated address.
// ParseList splits a comma-separated string into mailboxes, preserving
// input order. Parsing is all-or-nothing: one bad entry fails the whole
// list so callers never silently drop recipients.
package mailbox

import (
	"fmt"
	"net/mail"
	"strings"
)

// Mailbox is a display name plus a validated email address.
type Mailbox struct {
	Name    string
	Address string
}

// String formats the mailbox in RFC 5322 form: "Name <addr>" or bare addr.
func (m Mailbox) String() string {
	if m.Name == "" {
		return m.Address
	}
	return fmt.Sprintf("%s <%s>", m.Name, m.Address)
}

// Parse parses a single mailbox. Accepts both the bare address form
// ("alice@example.com") and the display-name form ("Alice <alice@example.com>").
func Parse(raw string) (Mailbox, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Mailbox{}, fmt.Errorf("%w: empty address", ErrInvalidMailbox)
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return Mailbox{}, fmt.Errorf("%w: %q", ErrInvalidMailbox, raw)
	}

	return Mailbox{Name: addr.Name, Address: addr.Address}, nil
}

// MustParse parses a mailbox and panics on failure. Intended for
// boot-time configuration values that must be valid for the process to run.
func MustParse(raw string) Mailbox {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseList splits raw on commas and parses each entry as a mailbox.
//
// Entries are trimmed and empty pieces (stray or trailing commas) are
// skipped. Returns ErrEmptyRecipientList when nothing remains, and
// ErrInvalidMailbox when any non-empty entry fails to parse. Output
// order matches input order.
func ParseList(raw string) ([]Mailbox, error) {
	pieces := strings.Split(raw, ",")

	list := make([]Mailbox, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		m, err := Parse(piece)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}

	if len(list) == 0 {
		return nil, ErrEmptyRecipientList
	}

	return list, nil
}
