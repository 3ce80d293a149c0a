package mail

import (
	"context"
	"fmt"
	"time"

	"elca-web/internal/logging"

	"github.com/sirupsen/logrus"
)

// NoopSender logs messages instead of delivering them. Used when no
// RESEND_API_KEY is configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	logging.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("noop_email_send")
	return Result{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
