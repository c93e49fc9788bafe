package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/platform/retry"
)

// SetupWebhook registers the bot's webhook at serverURL/webhook/<bot token>.
// Telegram occasionally times out on this call, so it retries a few times
// before giving up.
func SetupWebhook(ctx context.Context, bot *Bot, serverURL string) error {
	url := fmt.Sprintf("%s/webhook/%s", serverURL, bot.api.Token)

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Webhook registration failed, retrying",
				"attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	err = retry.Do(ctx, policy, func() error {
		_, err := bot.api.Request(wh)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}

	info, err := bot.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("failed to verify webhook: %w", err)
	}
	if info.LastErrorDate != 0 {
		slog.Warn("Telegram reports webhook delivery errors",
			"last_error", info.LastErrorMessage)
	}

	slog.Info("Webhook registered", "pending_updates", info.PendingUpdateCount)
	return nil
}
