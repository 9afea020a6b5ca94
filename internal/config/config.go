package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the platform. It is built once
// at startup and handed to the components that need it; nothing reads the
// environment after Load returns.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	// DatabaseURL is either a postgres DSN or a sqlite file path.
	DatabaseURL string
	RedisURL    string
	NATSURL     string

	JWTSecret string
	JWTTTL    time.Duration

	RealEstateAPIKey  string
	RealEstateBaseURL string
	UpstreamTimeout   time.Duration

	OpenAIAPIKey string
	AIModel      string
	AIMaxTokens  int

	LoginThrottleMax    int
	LoginThrottleWindow time.Duration
}

// BotConfig holds configuration for the Slack command front-end.
type BotConfig struct {
	SlackBotToken string
	SlackAppToken string
	APIBaseURL    string
	APIToken      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	v := newViper()

	v.SetDefault("app.name", "REI Platform API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8000")
	v.SetDefault("database.url", "rei_platform.db")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("realestate.base_url", "https://api.realestateapi.com/v2")
	v.SetDefault("upstream.timeout", "30s")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("login.throttle_max", 10)
	v.SetDefault("login.throttle_window", "15m")

	ttl, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	upstreamTimeout, err := time.ParseDuration(v.GetString("upstream.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid upstream timeout: %w", err)
	}

	throttleWindow, err := time.ParseDuration(v.GetString("login.throttle_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid login throttle window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              ttl,
		RealEstateAPIKey:    v.GetString("realestate.api_key"),
		RealEstateBaseURL:   v.GetString("realestate.base_url"),
		UpstreamTimeout:     upstreamTimeout,
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		AIModel:             v.GetString("ai.model"),
		AIMaxTokens:         v.GetInt("ai.max_tokens"),
		LoginThrottleMax:    v.GetInt("login.throttle_max"),
		LoginThrottleWindow: throttleWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1000
	}

	return cfg, nil
}

// LoadBot reads configuration for the Slack bot binary.
func LoadBot() (BotConfig, error) {
	v := newViper()

	v.SetDefault("api.base_url", "http://localhost:8000")

	cfg := BotConfig{
		SlackBotToken: v.GetString("slack.bot_token"),
		SlackAppToken: v.GetString("slack.app_token"),
		APIBaseURL:    v.GetString("api.base_url"),
		APIToken:      v.GetString("api.token"),
	}

	if cfg.SlackBotToken == "" || cfg.SlackAppToken == "" {
		return BotConfig{}, fmt.Errorf("slack bot and app tokens must be provided")
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}
