package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/config"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/engine"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/golike"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/platform/logging"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/redis"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/server"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/telegram"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupBot(cfg *config.Config) *telegram.Bot {
	bot, err := telegram.NewBot(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to create Telegram bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Telegram bot authorized", "username", bot.Username())
	return bot
}

func setupWebhook(cfg *config.Config, bot *telegram.Bot) {
	if cfg.ServerURL == "" {
		slog.Warn("SERVER_URL not set, skipping webhook registration")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := telegram.SetupWebhook(ctx, bot, cfg.ServerURL); err != nil {
		slog.Error("Failed to set up webhook", "error", err)
		os.Exit(1)
	}
}

func runGracefulShutdown(srv *server.Server, manager *engine.Manager) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Workers stop cooperatively; no waiting beyond the HTTP drain.
		manager.StopAll()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	bot := setupBot(cfg)
	setupWebhook(cfg, bot)

	store := redis.NewCredentialRepo(redisClient)
	provider := golike.NewClient(cfg.GolikeBaseURL, clock)
	manager := engine.NewManager(provider, store, bot, clock, cfg.WorkersPerPlatform)
	handler := telegram.NewHandler(manager, bot)

	srv := server.NewServer(cfg, handler, redisClient)
	done := runGracefulShutdown(srv, manager)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
