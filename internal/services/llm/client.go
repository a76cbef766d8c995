package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultBaseURL is the OpenRouter chat completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	// DefaultModel is used when the config leaves the model blank.
	DefaultModel = "google/gemini-2.5-flash"

	defaultTimeout    = 60 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
	maxRetryDelay     = 10 * time.Second
	maxResponseBytes  = 4 << 20
)

// Config captures the runtime settings for an OpenAI-compatible endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client issues JSON chat completions against OpenRouter, the alternate lyric
// translation back end.
type Client struct {
	cfg        Config
	httpClient *http.Client
	attempts   uint64
	retryDelay time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry sets the attempt count and the first backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = uint64(attempts)
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// NewClient constructs a client from cfg, filling blank fields with defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx reply from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= http.StatusInternalServerError
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CompleteJSON sends one JSON-mode completion and returns the message content
// with any code fence removed. 429, 408 and 5xx replies and empty content are
// retried with exponential backoff.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("llm complete: system and user prompts are required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.1,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("llm complete: encode body: %w", err)
	}

	backoff := retry.WithCappedDuration(maxRetryDelay, retry.NewExponential(c.retryDelay))
	backoff = retry.WithMaxRetries(c.attempts-1, backoff)

	var content string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := c.send(ctx, payload)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Retryable() {
				return retry.RetryableError(err)
			}
			return err
		}
		if text == "" {
			return retry.RetryableError(errors.New("empty completion content"))
		}
		content = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return content, nil
}

func (c *Client) send(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: snippet(string(body))}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	for _, choice := range decoded.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return StripCodeFence(text), nil
		}
		if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
			return "", fmt.Errorf("model refused: %s", refusal)
		}
	}
	return "", nil
}

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// DecodeJSON unmarshals model output into target. When the payload is wrapped
// in prose it retries on the outermost array or object.
func DecodeJSON(content string, target any) error {
	trimmed := StripCodeFence(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(trimmed), target)
	if err == nil {
		return nil
	}
	if inner := outermostJSON(trimmed); inner != "" && inner != trimmed {
		if json.Unmarshal([]byte(inner), target) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w (payload: %s)", err, snippet(trimmed))
}

func outermostJSON(text string) string {
	openTok, closeTok := "[", "]"
	arr, obj := strings.Index(text, "["), strings.Index(text, "{")
	if arr < 0 || (obj >= 0 && obj < arr) {
		openTok, closeTok = "{", "}"
	}
	start := strings.Index(text, openTok)
	end := strings.LastIndex(text, closeTok)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func snippet(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
