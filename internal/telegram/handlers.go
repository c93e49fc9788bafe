package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/engine"
)

// jobEngine is the handler's view of the session manager.
type jobEngine interface {
	Start(ctx context.Context, chatID int64) (int, error)
	Stop(ctx context.Context, chatID int64) (engine.StopResult, error)
	ReplaceCredential(ctx context.Context, chatID int64, token string) (map[domain.Platform]int, error)
	TogglePlatform(ctx context.Context, chatID int64, p domain.Platform) (domain.PlatformConfig, error)
	SetPlatforms(ctx context.Context, chatID int64, cfg domain.PlatformConfig) (domain.PlatformConfig, error)
	SnapshotFor(ctx context.Context, chatID int64) (engine.Snapshot, error)
	PublishStatus(ctx context.Context, chatID int64) error
	Delete(ctx context.Context, chatID int64) error
}

// sender is the handler's view of the outbound bot surface.
type sender interface {
	SendNotice(ctx context.Context, chatID int64, text string) error
	SendConfig(ctx context.Context, chatID int64, text string, cfg domain.PlatformConfig) error
	EditConfig(ctx context.Context, chatID int64, messageID int, text string, cfg domain.PlatformConfig) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Golike issues "Bearer <opaque>" authorization values; anything else is a
// paste error worth catching before it hits the provider.
var authTokenPattern = regexp.MustCompile(`^Bearer\s+\S+$`)

const authUsageText = "Usage: /auth `Bearer <your Golike authorization token>`"

const welcomeText = `*🤖 Golike Job Rotator*

Claims Instagram and Threads jobs on Golike, rotating through all your linked accounts.

/auth ` + "`Bearer <token>`" + ` - save your Golike authorization token
/config - choose platforms
/startjob - start claiming jobs
/stopjob - stop all workers
/status - show the live status board
/deleteauth - wipe token and session data`

const configText = "*⚙️ Platform config*\nPick the platforms workers may claim jobs on. Changes are only possible while stopped."

// Handler routes incoming Telegram updates to the engine.
type Handler struct {
	engine jobEngine
	bot    sender
}

func NewHandler(e jobEngine, bot sender) *Handler {
	return &Handler{engine: e, bot: bot}
}

// HandleUpdate dispatches one update. Errors are rendered to the user; the
// return value exists for logging at the transport layer.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return h.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		return h.handleCallback(ctx, update.CallbackQuery)
	default:
		return nil
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		return h.bot.SendNotice(ctx, chatID, welcomeText)
	case "auth":
		return h.handleAuth(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "config":
		return h.handleConfig(ctx, chatID)
	case "startjob":
		return h.handleStart(ctx, chatID)
	case "stopjob":
		return h.handleStop(ctx, chatID)
	case "status":
		return h.handleStatus(ctx, chatID)
	case "deleteauth":
		return h.handleDeleteAuth(ctx, chatID)
	default:
		return h.bot.SendNotice(ctx, chatID, "Unknown command. /help lists everything I understand.")
	}
}

func (h *Handler) handleAuth(ctx context.Context, chatID int64, token string) error {
	if !authTokenPattern.MatchString(token) {
		return h.bot.SendNotice(ctx, chatID, authUsageText)
	}

	counts, err := h.engine.ReplaceCredential(ctx, chatID, token)
	if err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}

	text := fmt.Sprintf(
		"✅ Token saved.\nEligible accounts: IG `%d`, Threads `%d`.\n/startjob to begin.",
		counts[domain.PlatformInstagram], counts[domain.PlatformThreads],
	)
	return h.bot.SendNotice(ctx, chatID, text)
}

func (h *Handler) handleConfig(ctx context.Context, chatID int64) error {
	snap, err := h.engine.SnapshotFor(ctx, chatID)
	if err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}
	return h.bot.SendConfig(ctx, chatID, configText, snap.Platforms)
}

func (h *Handler) handleStart(ctx context.Context, chatID int64) error {
	started, err := h.engine.Start(ctx, chatID)
	if err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}
	if started == 0 {
		return h.bot.SendNotice(ctx, chatID, "Already running. /status shows the board.")
	}
	// The engine already pushed the status board; nothing more to say.
	return nil
}

func (h *Handler) handleStop(ctx context.Context, chatID int64) error {
	res, err := h.engine.Stop(ctx, chatID)
	if err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}
	if res.Workers == 0 {
		return h.bot.SendNotice(ctx, chatID, "Nothing is running.")
	}
	text := fmt.Sprintf("⏹ Stopped `%d` worker(s). Total earned: `%d` xu.", res.Workers, res.Earned)
	return h.bot.SendNotice(ctx, chatID, text)
}

func (h *Handler) handleStatus(ctx context.Context, chatID int64) error {
	if err := h.engine.PublishStatus(ctx, chatID); err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}
	return nil
}

func (h *Handler) handleDeleteAuth(ctx context.Context, chatID int64) error {
	if err := h.engine.Delete(ctx, chatID); err != nil {
		return h.bot.SendNotice(ctx, chatID, userMessage(err))
	}
	return h.bot.SendNotice(ctx, chatID, "🗑 Token and session data deleted. /auth to start over.")
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return h.bot.AnswerCallback(ctx, cb.ID, "")
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch cb.Data {
	case callbackJobStart:
		if err := h.bot.AnswerCallback(ctx, cb.ID, ""); err != nil {
			slog.Debug("Callback answer failed", "error", err)
		}
		return h.handleStart(ctx, chatID)

	case callbackJobStop:
		if err := h.bot.AnswerCallback(ctx, cb.ID, ""); err != nil {
			slog.Debug("Callback answer failed", "error", err)
		}
		return h.handleStop(ctx, chatID)

	case callbackConfigOpen:
		if err := h.bot.AnswerCallback(ctx, cb.ID, ""); err != nil {
			slog.Debug("Callback answer failed", "error", err)
		}
		return h.handleConfig(ctx, chatID)

	case callbackToggleInstagram:
		return h.applyConfigChange(ctx, cb.ID, chatID, messageID, func() (domain.PlatformConfig, error) {
			return h.engine.TogglePlatform(ctx, chatID, domain.PlatformInstagram)
		})

	case callbackToggleThreads:
		return h.applyConfigChange(ctx, cb.ID, chatID, messageID, func() (domain.PlatformConfig, error) {
			return h.engine.TogglePlatform(ctx, chatID, domain.PlatformThreads)
		})

	case callbackSetBoth:
		return h.applyConfigChange(ctx, cb.ID, chatID, messageID, func() (domain.PlatformConfig, error) {
			return h.engine.SetPlatforms(ctx, chatID, domain.PlatformConfig{Instagram: true, Threads: true})
		})

	case callbackSetNone:
		return h.applyConfigChange(ctx, cb.ID, chatID, messageID, func() (domain.PlatformConfig, error) {
			return h.engine.SetPlatforms(ctx, chatID, domain.PlatformConfig{})
		})

	case callbackConfigDone:
		return h.bot.AnswerCallback(ctx, cb.ID, "Saved")

	default:
		return h.bot.AnswerCallback(ctx, cb.ID, "")
	}
}

func (h *Handler) applyConfigChange(ctx context.Context, callbackID string, chatID int64, messageID int, change func() (domain.PlatformConfig, error)) error {
	cfg, err := change()
	if err != nil {
		return h.bot.AnswerCallback(ctx, callbackID, userMessage(err))
	}
	if err := h.bot.AnswerCallback(ctx, callbackID, ""); err != nil {
		slog.Debug("Callback answer failed", "error", err)
	}
	return h.bot.EditConfig(ctx, chatID, messageID, configText, cfg)
}

// userMessage turns engine errors into short user-facing replies.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentialRequired):
		return "No token saved. /auth `<token>` first."
	case errors.Is(err, domain.ErrUnauthorized):
		return "❌ Golike rejected that token. Grab a fresh one from the web app and /auth again."
	case errors.Is(err, domain.ErrNoPlatformsEnabled):
		return "All platforms are disabled. Enable at least one in /config."
	case errors.Is(err, domain.ErrNoEligibleAccounts):
		return "No eligible accounts on the enabled platforms. Link an active account on Golike first."
	case errors.Is(err, domain.ErrSessionRunning):
		return "Stop the session (/stopjob) before changing the config."
	default:
		slog.Error("Unhandled engine error", "error", err)
		return "Something went wrong. Try again in a moment."
	}
}
