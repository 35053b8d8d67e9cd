package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Completer answers a message sequence with one assistant message.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds chat client configuration.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	SiteURL     string
	SiteName    string
	// Timeout bounds one HTTP attempt; callers bound the whole call with ctx.
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns the OpenRouter defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://openrouter.ai/api",
		Model:       "openai/gpt-oss-120b",
		Temperature: 0.7,
		MaxTokens:   500,
		SiteURL:     "http://localhost:4321",
		SiteName:    "DG-Labs OS",
		Timeout:     30 * time.Second,
		RetryCount:  1,
	}
}

// ─── Client ──────────────────────────────────────────────────────────────────

// Client is a Completer backed by an OpenAI-compatible HTTP API.
type Client struct {
	http *resty.Client
	cfg  Config
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates a Client. Empty strings and non-positive limits in cfg fall
// back to DefaultConfig.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = def.SiteURL
	}
	if cfg.SiteName == "" {
		cfg.SiteName = def.SiteName
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("HTTP-Referer", cfg.SiteURL).
		SetHeader("X-Title", cfg.SiteName).
		SetRetryCount(max(cfg.RetryCount, 0)).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)

	return &Client{http: client, cfg: cfg}
}

// retryCondition retries throttling and gateway failures only; transport
// errors are left to the caller's deadline.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil || r == nil {
		return false
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Complete posts msgs and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, msgs []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &Error{Code: CodeConfig, Message: "chat service is not configured"}
	}
	if err := Validate(msgs); err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.APIKey).
		SetBody(completionRequest{
			Model:       c.cfg.Model,
			Messages:    msgs,
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
		}).
		Post("/v1/chat/completions")
	if err != nil {
		return "", classifyTransport(ctx, err)
	}

	if resp.StatusCode() >= 400 {
		return "", &Error{
			Code:    CodeService,
			Message: "the AI service is temporarily unavailable",
			Status:  resp.StatusCode(),
		}
	}

	var out completionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &Error{Code: CodeInvalidResponse, Message: "received invalid response from AI service", Err: err}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", &Error{Code: CodeInvalidResponse, Message: "received invalid response from AI service"}
	}
	return out.Choices[0].Message.Content, nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: "request timed out", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Code: CodeTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Code: CodeInternal, Message: "unexpected transport error", Err: err}
}
