package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"ampere/internal/bot"
	"ampere/internal/cache"
	"ampere/internal/config"
	"ampere/internal/engagement"
	"ampere/internal/fetcher"
	"ampere/internal/model"
	"ampere/internal/profile"
	"ampere/internal/rails"
	"ampere/internal/rank"
	"ampere/internal/scheduler"
	"ampere/internal/storage"
)

const railCacheSize = 256

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	railsFile, err := config.LoadRails(cfg.RailsFile)
	if err != nil {
		log.Error("load rails", "path", cfg.RailsFile, "error", err)
		os.Exit(1)
	}

	rankCfg := rank.DefaultConfig()
	rankCfg.RecencyWindow = cfg.RecencyWindow
	rankCfg.PenaltyCap = cfg.PenaltyCap
	if err := rankCfg.Validate(); err != nil {
		log.Error("invalid ranking config", "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	users := bot.NewUsers(store, railsFile.Profile(profile.Default()), engagement.Options{
		ViewingCap:     cfg.ViewingCap,
		AttributionCap: cfg.AttributionCap,
		Sink:           engagement.NewLogSink(log),
	}, log)

	svc := rails.New(
		railsFile.Rails,
		fetcher.New(http.DefaultClient),
		cache.NewLRU[[]model.Card](railCacheSize, cfg.RailCacheTTL),
		log,
	)
	ranker := rank.New(rankCfg)

	b, err := bot.New(cfg.TelegramBotToken, cfg, users, svc, ranker, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, users, svc, ranker, b, log)
	sched.SetTickInterval(cfg.CheckInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting ampere", "rails", len(railsFile.Rails))

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("ampere stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
