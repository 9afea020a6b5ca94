package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rei-nationwide/platform-api/internal/config"
	"github.com/rei-nationwide/platform-api/internal/database"
	"github.com/rei-nationwide/platform-api/internal/handler"
	"github.com/rei-nationwide/platform-api/internal/middleware"
	"github.com/rei-nationwide/platform-api/internal/models"
	"github.com/rei-nationwide/platform-api/internal/repository"
	"github.com/rei-nationwide/platform-api/internal/router"
	"github.com/rei-nationwide/platform-api/internal/service"
	"github.com/rei-nationwide/platform-api/internal/token"
	"github.com/rei-nationwide/platform-api/pkg/realestate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis backs the login throttle; without it logins are simply unthrottled.
	var throttle *service.LoginThrottle
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		throttle = service.NewLoginThrottle(redisClient, cfg.LoginThrottleMax, cfg.LoginThrottleWindow, logger)
	}

	// NATS mirrors audit entries onto a message bus; it is optional too.
	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()
		publisher = conn
	}

	gateway, err := realestate.New(realestate.Config{
		APIKey:  cfg.RealEstateAPIKey,
		BaseURL: cfg.RealEstateBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create realestate client: %v", err)
	}

	var completer service.ChatCompleter
	if cfg.OpenAIAPIKey != "" {
		completer = openai.NewClient(cfg.OpenAIAPIKey)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, publisher, logger)
	authService := service.NewAuthService(userRepo, issuer, activityService, throttle, validate, logger)
	propertyService := service.NewPropertyService(gateway, validate, logger)
	aiService := service.NewAIService(completer, service.AIConfig{Model: cfg.AIModel, MaxTokens: cfg.AIMaxTokens}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     handler.NewAuthHandler(authService, logger),
		PropertyHandler: handler.NewPropertyHandler(propertyService, activityService, logger),
		AIHandler:       handler.NewAIHandler(aiService, activityService, logger),
		AdminHandler:    handler.NewAdminHandler(authService, activityService, logger),
		AuthMiddleware:  middleware.Authenticate(issuer, logger),
	})

	activityService.Record(context.Background(), service.ActivityEntry{
		Action:   "startup",
		Endpoint: "/",
		Detail:   cfg.AppEnv,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
