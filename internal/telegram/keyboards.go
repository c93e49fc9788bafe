package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

// Callback data values carried by inline keyboard buttons.
const (
	callbackJobStart        = "job_start"
	callbackJobStop         = "job_stop"
	callbackConfigOpen      = "config_open"
	callbackToggleInstagram = "config_toggle_instagram"
	callbackToggleThreads   = "config_toggle_threads"
	callbackSetBoth         = "config_set_both"
	callbackSetNone         = "config_set_none"
	callbackConfigDone      = "config_done"
)

func statusKeyboard(running bool) tgbotapi.InlineKeyboardMarkup {
	if running {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⏹ Stop", callbackJobStop),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start", callbackJobStart),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Config", callbackConfigOpen),
		),
	)
}

func configKeyboard(cfg domain.PlatformConfig) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(flagLabel("Instagram", cfg.Instagram), callbackToggleInstagram),
			tgbotapi.NewInlineKeyboardButtonData(flagLabel("Threads", cfg.Threads), callbackToggleThreads),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Enable both", callbackSetBoth),
			tgbotapi.NewInlineKeyboardButtonData("Disable both", callbackSetNone),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Done", callbackConfigDone),
		),
	)
}

func flagLabel(name string, enabled bool) string {
	if enabled {
		return "✅ " + name
	}
	return "❌ " + name
}
