package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

// Bot wraps the Telegram Bot API client. It implements domain.Messenger for
// the engine's status pushes and offers richer send helpers to the handler.
//
// The underlying library does not thread contexts through API calls; the ctx
// parameters exist for interface symmetry and future transport swaps.
type Bot struct {
	api *tgbotapi.BotAPI
}

var _ domain.Messenger = (*Bot)(nil)

func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Bot{api: api}, nil
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// --- domain.Messenger ---

func (b *Bot) SendStatus(_ context.Context, chatID int64, text string, running bool) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = statusKeyboard(running)

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, mapAPIError(err)
	}
	return sent.MessageID, nil
}

func (b *Bot) EditStatus(_ context.Context, chatID int64, messageID int, text string, running bool) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, statusKeyboard(running))
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(edit); err != nil {
		return mapAPIError(err)
	}
	return nil
}

func (b *Bot) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return mapAPIError(err)
	}
	return nil
}

func (b *Bot) SendNotice(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return mapAPIError(err)
	}
	return nil
}

// --- Handler helpers ---

func (b *Bot) SendConfig(_ context.Context, chatID int64, text string, cfg domain.PlatformConfig) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = configKeyboard(cfg)

	_, err := b.api.Send(msg)
	return mapAPIError(err)
}

func (b *Bot) EditConfig(_ context.Context, chatID int64, messageID int, text string, cfg domain.PlatformConfig) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, configKeyboard(cfg))
	edit.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(edit)
	return mapAPIError(err)
}

func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string) error {
	_, err := b.api.Request(tgbotapi.NewCallback(callbackID, text))
	return mapAPIError(err)
}

// mapAPIError folds Telegram's stringly-typed API errors into domain errors.
// An unchanged message body is not an error at all.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "message is not modified"):
		return nil
	case strings.Contains(msg, "message to edit not found"),
		strings.Contains(msg, "message can't be edited"),
		strings.Contains(msg, "message to delete not found"):
		return domain.ErrMessageNotFound
	default:
		return err
	}
}
