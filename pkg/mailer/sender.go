package mailer

import "context"

// Sender is the transport boundary. It accepts a fully-composed
// message and returns the transport-assigned message id, or an error
// when delivery fails. Implementations live in the subpackages
// (smtp, resend, outbox).
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
