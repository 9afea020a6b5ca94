package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/observability"
)

const defaultAssistantContext = "You are the REI Nationwide AI Assistant. " +
	"Help the team with real estate investment questions, deal analysis, and strategy."

// ChatCompleter is the outbound contract to the AI provider. *openai.Client
// satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIConfig defines configuration options for the AI assistant service.
type AIConfig struct {
	Model     string
	MaxTokens int
}

// AIService answers assistant queries. Provider failures degrade to a
// value-shaped answer so handlers treat them like any other response.
type AIService interface {
	Query(ctx context.Context, req dto.AIQueryRequest) dto.AIQueryResponse
}

type aiService struct {
	client ChatCompleter
	cfg    AIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewAIService constructs the AI assistant service. client may be nil when no
// provider key is configured; queries then degrade to a notice.
func NewAIService(client ChatCompleter, cfg AIConfig, logger zerolog.Logger) AIService {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}

	return &aiService{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/rei-nationwide/platform-api/internal/service/ai"),
		logger: logger.With().Str("component", "ai_service").Logger(),
	}
}

func (s *aiService) Query(parent context.Context, req dto.AIQueryRequest) dto.AIQueryResponse {
	model := req.Model
	if model == "" {
		model = s.cfg.Model
	}

	if s.client == nil {
		return dto.AIQueryResponse{Response: "AI provider not configured", Model: model}
	}

	ctx, span := s.tracer.Start(parent, "ai.query", trace.WithAttributes(
		attribute.String("model", model),
	))
	defer span.End()

	systemContext := req.Context
	if strings.TrimSpace(systemContext) == "" {
		systemContext = defaultAssistantContext
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: s.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemContext},
			{Role: openai.ChatMessageRoleUser, Content: req.Query},
		},
	})
	duration := time.Since(start)
	observability.UpstreamLatency().WithLabelValues("openai", "chat_completions").Observe(duration.Seconds())

	if err != nil {
		observability.UpstreamRequests().WithLabelValues("openai", "chat_completions", "error").Inc()
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("model", model).Msg("ai query degraded to error value")
		return dto.AIQueryResponse{Response: "AI provider error: " + err.Error(), Model: model}
	}

	observability.UpstreamRequests().WithLabelValues("openai", "chat_completions", "ok").Inc()

	if len(resp.Choices) == 0 {
		return dto.AIQueryResponse{Response: "No response", Model: model}
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		answer = "No response"
	}

	return dto.AIQueryResponse{Response: answer, Model: model}
}
