package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/ems-vitals-platform/internal/alerts"
	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
	"github.com/wolfman30/ems-vitals-platform/internal/notify"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// BuildAlertPublisher returns an SQS publisher when a queue URL is configured and a
// logging publisher otherwise.
func BuildAlertPublisher(cfg *appconfig.Config, client *sqs.Client, logger *logging.Logger) alerts.Publisher {
	if cfg == nil || client == nil || strings.TrimSpace(cfg.AlertQueueURL) == "" {
		return alerts.NewLogPublisher(logger)
	}
	return alerts.NewQueuePublisher(alerts.NewSQSQueue(client, cfg.AlertQueueURL), logger)
}

// BuildEmailSender selects the email provider named by cfg.EmailProvider, falling
// back to the stub sender when the provider is not usable.
func BuildEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; using stub sender")
	case "ses":
		if ses != nil {
			return notify.NewSESSender(ses, notify.SESConfig{
				FromEmail: cfg.EmailFromAddress,
				FromName:  cfg.EmailFromName,
			}, logger)
		}
		logger.Warn("ses selected but no SES client; using stub sender")
	}
	return notify.NewStubEmailSender(logger)
}
