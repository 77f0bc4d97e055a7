package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/mastry-api/internal/config"
	"github.com/wolfman30/mastry-api/internal/leads"
	"github.com/wolfman30/mastry-api/internal/notify"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

const (
	providerAuto     = "auto"
	providerSendGrid = "sendgrid"
	providerSES      = "ses"
	providerNone     = "none"
)

// BuildEmailSender selects an email provider from EMAIL_PROVIDER. It returns
// the sender, the provider chosen and, when nil, the reason.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string, string) {
	if cfg == nil {
		return nil, "", "missing config"
	}
	if strings.TrimSpace(cfg.EmailFromAddress) == "" {
		return nil, "", "EMAIL_FROM_ADDRESS not set"
	}

	switch cfg.EmailProvider {
	case providerNone:
		return nil, providerNone, "disabled"
	case providerSendGrid:
		if sender := buildSendGrid(cfg, logger); sender != nil {
			return sender, providerSendGrid, ""
		}
		return nil, providerSendGrid, "SENDGRID_API_KEY not set"
	case providerSES:
		if awsCfg == nil {
			return nil, providerSES, "aws config not loaded"
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		return sender, providerSES, ""
	case providerAuto, "":
		if sender := buildSendGrid(cfg, logger); sender != nil {
			return sender, providerSendGrid, ""
		}
		return nil, providerAuto, "no email provider configured"
	default:
		return nil, cfg.EmailProvider, "unknown EMAIL_PROVIDER"
	}
}

func buildSendGrid(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFromAddress,
		FromName:  cfg.EmailFromName,
	}, logger)
	if sender == nil {
		return nil
	}
	return sender
}

// BuildLeadNotifier returns the new-lead notifier, or nil when email is not
// configured.
func BuildLeadNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) leads.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.LeadNotifyEmail) == "" {
		logger.Info("lead notifications disabled", "reason", "LEAD_NOTIFY_EMAIL not set")
		return nil
	}
	sender, provider, reason := BuildEmailSender(cfg, awsCfg, logger)
	if sender == nil {
		logger.Info("lead notifications disabled", "provider", provider, "reason", reason)
		return nil
	}
	notifier := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmail, logger)
	if notifier == nil {
		return nil
	}
	logger.Info("lead notifications enabled", "provider", provider, "to", cfg.LeadNotifyEmail)
	return notifier
}
