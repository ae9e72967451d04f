package services

import (
	"context"

	"payments-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/go-telegram/bot"
)

// OperatorAlerter fans operational alerts out to the admin Telegram chat
// and, when configured, a transactional email. Both channels are
// best-effort; alerting can never fail a payment.
type OperatorAlerter struct {
	adminBot    *bot.Bot
	adminChatID int64

	emailClient *brevo.APIClient
	fromEmail   string
	alertEmail  string
	serviceName string
}

// AlerterConfig holds the alert channel configuration.
type AlerterConfig struct {
	AdminBotToken  string
	AdminChatID    int64
	BrevoAPIKey    string
	BrevoFromEmail string
	AlertEmail     string
	ServiceName    string
}

// NewOperatorAlerter creates an alerter. Channels without configuration are
// silently disabled.
func NewOperatorAlerter(cfg AlerterConfig) (*OperatorAlerter, error) {
	a := &OperatorAlerter{
		adminChatID: cfg.AdminChatID,
		fromEmail:   cfg.BrevoFromEmail,
		alertEmail:  cfg.AlertEmail,
		serviceName: cfg.ServiceName,
	}

	if cfg.AdminBotToken != "" && cfg.AdminChatID != 0 {
		b, err := bot.New(cfg.AdminBotToken, bot.WithSkipGetMe())
		if err != nil {
			return nil, err
		}
		a.adminBot = b
	}

	if cfg.BrevoAPIKey != "" && cfg.AlertEmail != "" {
		brevoCfg := brevo.NewConfiguration()
		brevoCfg.AddDefaultHeader("api-key", cfg.BrevoAPIKey)
		a.emailClient = brevo.NewAPIClient(brevoCfg)
	}

	return a, nil
}

// SendOperatorAlert pushes the alert to every configured channel.
func (a *OperatorAlerter) SendOperatorAlert(ctx context.Context, text string) {
	logging.Errorf("Operator alert: %s", text)

	if a.adminBot != nil {
		_, err := a.adminBot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: a.adminChatID,
			Text:   "ALERT:\n" + text,
		})
		if err != nil {
			logging.Errorf("Failed to send admin alert: %v", err)
		}
	}

	if a.emailClient != nil {
		_, _, err := a.emailClient.TransactionalEmailsApi.SendTransacEmail(ctx, brevo.SendSmtpEmail{
			Sender:      &brevo.SendSmtpEmailSender{Email: a.fromEmail, Name: a.serviceName},
			To:          []brevo.SendSmtpEmailTo{{Email: a.alertEmail}},
			Subject:     a.serviceName + " alert",
			TextContent: text,
		})
		if err != nil {
			logging.Errorf("Failed to send alert email: %v", err)
		}
	}
}
