package services

import (
	"context"

	"payments-api/pkg/logging"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"
)

// TelegramNotifier delivers subscriber-facing messages through the Telegram
// Bot API. Delivery is best-effort: a failure is logged and never changes
// the outcome of the payment that triggered it.
type TelegramNotifier struct {
	bot *bot.Bot
}

// NewTelegramNotifier creates a notifier. With an empty token the notifier
// is disabled and every send becomes a logged no-op.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	if token == "" {
		logging.Warnf("TELEGRAM_BOT_TOKEN not set, subscriber notifications disabled")
		return &TelegramNotifier{}, nil
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b}, nil
}

// SendMessage sends a Markdown message to the subscriber's chat.
func (n *TelegramNotifier) SendMessage(ctx context.Context, chatID int64, text string) {
	if n.bot == nil {
		return
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgModels.ParseModeMarkdown,
	})
	if err != nil {
		logging.Errorf("Failed to send notification to %d: %v", chatID, err)
	}
}
