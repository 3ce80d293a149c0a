package server

import (
	"context"
	"fmt"
	"time"

	"elca-web/internal/config"
	"elca-web/internal/handlers"
	"elca-web/internal/logging"
	"elca-web/internal/mail"
	"elca-web/internal/pdf"
	"elca-web/internal/views"

	"github.com/go-redis/redis/v7"
)

// NewEnv builds the services used by the handlers. The returned function
// releases them.
func NewEnv(cfg *config.Config) (handlers.Env, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logging.Log.WithError(err).Warn("failed to release resource")
			}
		}
	}

	e := handlers.Env{Config: cfg}

	pdfViews, err := views.LoadPDF()
	if err != nil {
		return e, cleanup, fmt.Errorf("load pdf templates: %w", err)
	}
	e.PDFViews = pdfViews

	if cfg.ResendAPIKey != "" {
		e.Mailer = mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		logging.Log.Warn("RESEND_API_KEY is not set, e-mails are only logged")
		e.Mailer = mail.NewNoopSender()
	}

	switch cfg.PDFEngine {
	case config.PDFEnginePlaywright:
		pw, err := pdf.NewPlaywright()
		if err != nil {
			return e, cleanup, fmt.Errorf("start playwright: %w", err)
		}
		closers = append(closers, pw.Close)
		e.PDF = pw
	default:
		e.PDF = pdf.NewWkhtmltopdf(cfg.PDFBinary, cfg.PDFTimeout)
	}

	e.Files = pdf.NewMemoryRegistry(cfg.PDFTTL)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping().Err(); err != nil {
			logging.Log.WithError(err).Warn("redis unavailable, keeping pdf registry in memory")
			_ = client.Close()
		} else {
			closers = append(closers, client.Close)
			e.Files = pdf.NewRedisRegistry(client, cfg.PDFTTL)
		}
	}

	if cfg.PDFTTL > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		closers = append(closers, func() error { cancel(); return nil })
		go pdf.RunSweeper(ctx, cfg.PDFDir, cfg.PDFTTL, sweepInterval(cfg.PDFTTL))
	}

	return e, cleanup, nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	if d := ttl / 4; d > time.Minute {
		return d
	}
	return time.Minute
}
