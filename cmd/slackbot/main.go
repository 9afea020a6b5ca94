package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/bot"
	"github.com/rei-nationwide/platform-api/internal/config"
)

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bot.New(bot.Config{
		BotToken:   cfg.SlackBotToken,
		AppToken:   cfg.SlackAppToken,
		APIBaseURL: cfg.APIBaseURL,
		APIToken:   cfg.APIToken,
	}, logger)

	logger.Info().Msg("starting slack bot")
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("slack bot stopped: %v", err)
	}

	log.Println("slack bot stopped")
}
