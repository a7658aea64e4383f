package mailbox

import "errors"

var (
	// ErrEmptyRecipientList indicates the raw recipient string contained no addresses.
	ErrEmptyRecipientList = errors.New("recipient list is empty")

	// ErrInvalidMailbox indicates an entry could not be parsed as an email address.
	ErrInvalidMailbox = errors.New("invalid mailbox")
)
