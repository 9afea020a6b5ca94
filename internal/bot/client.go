package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// APIClient talks to the platform API with a service-account token. Failures
// degrade to a value shaped like {"error": msg} so command handlers branch on
// the response instead of handling transport errors.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     zerolog.Logger
}

// NewAPIClient constructs a platform API client for the bot.
func NewAPIClient(baseURL, token string, logger zerolog.Logger) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		logger:     logger.With().Str("component", "bot_api_client").Logger(),
	}
}

// Post sends a JSON payload to the platform API and returns the decoded body
// with the HTTP status. The status is zero when the request never reached the
// API.
func (c *APIClient) Post(ctx context.Context, endpoint string, payload interface{}) (map[string]interface{}, int) {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.degrade(endpoint, err.Error()), 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return c.degrade(endpoint, err.Error()), 0
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(endpoint, err.Error()), 0
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return c.degrade(endpoint, "decode api response: "+err.Error()), resp.StatusCode
	}

	return result, resp.StatusCode
}

func (c *APIClient) degrade(endpoint, message string) map[string]interface{} {
	c.logger.Warn().Str("endpoint", endpoint).Str("error", message).Msg("api call degraded to error value")
	return map[string]interface{}{"error": message}
}
