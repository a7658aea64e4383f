package mailer

import "errors"

var (
	// ErrInvalidHeaderValue indicates a header field (subject, display
	// name, address) carries CR/LF and would allow header injection.
	ErrInvalidHeaderValue = errors.New("header value contains line breaks")

	// ErrNoRecipients indicates a message was composed without recipients.
	ErrNoRecipients = errors.New("message must have at least one recipient")

	// ErrSendFailed wraps transport errors; the underlying cause is
	// opaque to this package.
	ErrSendFailed = errors.New("failed to send email")
)
