// internal/common/gemini/client.go
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	commonhttp "research-assistant/internal/common/http"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/metrics"
)

const apiName = "gemini"

var (
	ErrTimeout       = errors.New("GEMINI_TIMEOUT")
	ErrRequestFailed = errors.New("GEMINI_REQUEST_FAILED")
	ErrDecodeFailed  = errors.New("GEMINI_DECODE_FAILED")
)

// Config carries the upstream coordinates. The API key travels in the query
// string, matching the provider contract; it must never be logged.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{"api": apiName}),
	}
}

// GenerateContent performs exactly one generateContent attempt. No retry,
// no backoff: the caller maps the sentinel errors onto its own taxonomy.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	start := time.Now()
	resp, err := c.generate(ctx, req)
	metrics.UpstreamCallDuration.WithLabelValues(apiName).Observe(time.Since(start).Seconds())
	metrics.UpstreamCallsTotal.WithLabelValues(apiName, outcomeOf(err)).Inc()
	return resp, err
}

func (c *Client) generate(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	c.logger.Debug("calling generateContent", map[string]interface{}{
		"model":     c.config.Model,
		"bodyBytes": len(body),
	})

	httpResp, err := c.client.PostJSON(ctx, c.endpoint(), body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		excerpt := readExcerpt(httpResp.Body, 512)
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, httpResp.StatusCode, excerpt)
	}

	var out GenerateContentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	if out.UsageMetadata != nil {
		c.logger.Debug("generateContent completed", map[string]interface{}{
			"model":       c.config.Model,
			"totalTokens": out.UsageMetadata.TotalTokenCount,
		})
	}

	return &out, nil
}

func (c *Client) endpoint() string {
	params := url.Values{}
	params.Set("key", c.config.APIKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s",
		c.config.BaseURL, c.config.Model, params.Encode())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrDecodeFailed):
		return "decode_error"
	default:
		return "error"
	}
}

func readExcerpt(r io.Reader, limit int64) string {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
