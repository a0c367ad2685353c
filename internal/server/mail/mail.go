// Package mail renders and sends the transactional emails of the
// onboarding and login flows.
package mail

import "context"

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
