package email

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers email. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
