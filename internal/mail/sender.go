// Package mail delivers account and project invitation e-mails.
package mail

import (
	"context"
	"time"
)

type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

type Result struct {
	MessageID string
	SentAt    time.Time
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}
