package mail

import (
	"context"
	"fmt"
	"time"

	"elca-web/internal/logging"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		logging.Log.WithError(err).WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Error("resend_send_failed")
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	logging.Log.WithFields(logrus.Fields{
		"message_id": sent.Id,
		"subject":    msg.Subject,
	}).Info("resend_sent")
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}
