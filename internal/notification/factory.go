package notification

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// NewMailer picks SMTP when a host is configured and logging otherwise, then adds resilience.
func NewMailer(cfg config.NotificationConfig, metrics *observability.Metrics, logger *zap.Logger) Mailer {
	var base Mailer
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Info("NOTIFY_SMTP_HOST not set, emails are logged only")
		base = NewLogMailer(logger)
	} else {
		base = NewSMTPMailer(cfg)
	}
	return NewResilientMailer(base, ResilienceConfig{
		Name:             "email",
		RetryAttempts:    cfg.RetryAttempts,
		BreakerThreshold: cfg.BreakerThreshold,
	}, metrics, logger)
}

// NewPusher picks the webhook gateway when configured and logging otherwise, then adds resilience.
func NewPusher(cfg config.NotificationConfig, metrics *observability.Metrics, logger *zap.Logger) Pusher {
	var base Pusher
	if strings.TrimSpace(cfg.PushWebhookURL) == "" {
		logger.Info("NOTIFY_PUSH_WEBHOOK_URL not set, pushes are logged only")
		base = NewLogPusher(logger)
	} else {
		base = NewWebhookPusher(cfg.PushWebhookURL, nil)
	}
	return NewResilientPusher(base, ResilienceConfig{
		Name:             "push",
		RetryAttempts:    cfg.RetryAttempts,
		BreakerThreshold: cfg.BreakerThreshold,
	}, metrics, logger)
}
