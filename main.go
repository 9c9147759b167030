// Package main is the entry point for the bill reminder Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/yelinaung/billkeeper/internal/bot"
	"gitlab.com/yelinaung/billkeeper/internal/config"
	"gitlab.com/yelinaung/billkeeper/internal/database"
	"gitlab.com/yelinaung/billkeeper/internal/gemini"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("billkeeper %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.TraceStdout)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if err := database.SeedCategories(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to seed categories")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
	} else {
		logger.Log.Warn().Msg("GEMINI_API_KEY not set, bill scanning and /ask are disabled")
	}

	telegramBot, err := bot.New(cfg, pool, geminiClient)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	telegramBot.Start(ctx)
}
