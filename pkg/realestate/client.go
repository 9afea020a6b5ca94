package realestate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rei",
		Subsystem: "realestate",
		Name:      "request_duration_seconds",
		Help:      "Duration of RealEstateAPI requests",
	}, []string{"endpoint"})

	upstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rei",
		Subsystem: "realestate",
		Name:      "request_failures_total",
		Help:      "Number of RealEstateAPI requests that degraded to an error value",
	}, []string{"endpoint"})
)

// Result is the decoded upstream response body. Failures never propagate as
// errors; they degrade to a value shaped like {"error": msg, "data": []} so
// calling code branches on the shape of the result instead of catching.
type Result map[string]interface{}

// Err returns the upstream error message, or "" on success.
func (r Result) Err() string {
	if message, ok := r["error"].(string); ok {
		return message
	}
	return ""
}

// Failed reports whether the call degraded to an error value.
func (r Result) Failed() bool {
	return r.Err() != ""
}

// Data returns the upstream "data" collection, or nil when absent.
func (r Result) Data() []interface{} {
	if data, ok := r["data"].([]interface{}); ok {
		return data
	}
	return nil
}

func errorResult(message string) Result {
	return Result{"error": message, "data": []interface{}{}}
}

// Filter is one predicate of an upstream property search.
type Filter struct {
	Field    string      `json:"field"`
	Value    interface{} `json:"value"`
	Operator string      `json:"operator"`
}

// Config defines configuration options for the RealEstateAPI client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the RealEstateAPI v2 endpoints. All methods share the
// degrade-to-value contract of Result.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New builds a RealEstateAPI client from the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("realestate api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.realestateapi.com/v2"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		tracer:     otel.Tracer("github.com/rei-nationwide/platform-api/pkg/realestate"),
		logger:     cfg.Logger.With().Str("component", "realestate_client").Logger(),
	}, nil
}

// AutoComplete resolves a free-form address to candidate address ids.
func (c *Client) AutoComplete(ctx context.Context, search string) Result {
	return c.post(ctx, "AutoComplete", map[string]interface{}{"search": search})
}

// PropertyDetail fetches the full record for a resolved address id.
func (c *Client) PropertyDetail(ctx context.Context, addressID string) Result {
	return c.post(ctx, "PropertyDetail", map[string]interface{}{"address_id": addressID})
}

// PropertySearch runs a filtered search bounded by size.
func (c *Client) PropertySearch(ctx context.Context, filters []Filter, size int) Result {
	return c.post(ctx, "PropertySearch", map[string]interface{}{"search": filters, "size": size})
}

// SkipTrace looks up owner contact information for a resolved address id.
func (c *Client) SkipTrace(ctx context.Context, addressID string) Result {
	return c.post(ctx, "SkipTrace", map[string]interface{}{"address_id": addressID})
}

// PropertyComps fetches comparable sales around a resolved address id.
func (c *Client) PropertyComps(ctx context.Context, addressID string, radius float64) Result {
	return c.post(ctx, "PropertyComps", map[string]interface{}{"address_id": addressID, "radius": radius, "size": 5})
}

func (c *Client) post(parent context.Context, endpoint string, payload map[string]interface{}) Result {
	ctx, span := c.tracer.Start(parent, "realestate."+endpoint, trace.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		upstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return c.degrade(endpoint, span, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return c.degrade(endpoint, span, err.Error())
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(endpoint, span, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.degrade(endpoint, span, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return c.degrade(endpoint, span, fmt.Sprintf("decode upstream response: %v", err))
	}

	return result
}

func (c *Client) degrade(endpoint string, span trace.Span, message string) Result {
	upstreamFailures.WithLabelValues(endpoint).Inc()
	span.SetAttributes(attribute.String("upstream.error", message))
	c.logger.Warn().Str("endpoint", endpoint).Str("error", message).Msg("upstream call degraded to error value")
	return errorResult(message)
}
