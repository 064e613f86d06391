package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"

	"safety-service/internal/logging"
	"safety-service/internal/utils"
)

// TelegramNotifier sends operational notices to a fixed chat. It is not part
// of the per-recipient outcome accounting; failures are the caller's to log.
type TelegramNotifier struct {
	token  string
	chatID int64
	logger *logging.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *logging.Logger) *TelegramNotifier {
	return &TelegramNotifier{token: token, chatID: chatID, logger: logger}
}

// Notify sends one message to the configured ops chat.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	return utils.Retry(t.logger, 3, time.Second, func() error {
		b, err := bot.New(t.token)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		params := &bot.SendMessageParams{
			ChatID: t.chatID,
			Text:   text,
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", t.chatID, err)
		}
		return nil
	})
}
