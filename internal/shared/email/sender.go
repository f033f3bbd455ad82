// Package email delivers outbound mail.
package email

import (
	"context"
	"errors"
)

// ErrUnavailable is returned while the delivery circuit is open.
var ErrUnavailable = errors.New("email delivery unavailable")

// Message is one HTML email to a single recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
