package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/platform/correlation"
)

// handleWebhook receives one Telegram update. The path token is the shared
// secret; a mismatch is answered 403 without reading the body. Updates are
// dispatched asynchronously so slow engine calls never trip Telegram's
// delivery timeout (Telegram retries non-200 responses).
func (s *Server) handleWebhook(c echo.Context) error {
	token := c.Param("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.BotToken)) != 1 {
		return c.NoContent(http.StatusForbidden)
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		slog.Warn("Undecodable webhook payload", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	go func() {
		ctx := correlation.WithID(context.Background(), correlation.NewID())
		if err := s.handler.HandleUpdate(ctx, update); err != nil {
			slog.ErrorContext(ctx, "Update handling failed",
				"update_id", update.UpdateID, "error", err)
		}
	}()

	return c.NoContent(http.StatusOK)
}
