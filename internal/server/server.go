package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/config"
)

// updateHandler is the server's view of the Telegram command router.
type updateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	handler   updateHandler
	rdb       *goredis.Client
	startTime time.Time
}

func NewServer(cfg *config.Config, handler updateHandler, rdb *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		handler:   handler,
		rdb:       rdb,
		startTime: time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
