package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"karaoke/internal/services/llm"
	"karaoke/internal/stage"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const jsonMIMEType = "application/json"

// Config captures the settings needed to reach Gemini.
type Config struct {
	APIKey string
	Model  string
}

// Client issues JSON completions against one Gemini model.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient opens a Gemini client. It fails when no API key is configured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// CompleteJSON sends the prompts with a JSON response MIME type and returns
// the text with any code fence removed.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", errors.New("gemini: user prompt required")
	}
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = jsonMIMEType
	if system := strings.TrimSpace(systemPrompt); system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text, err := ResponseText(resp)
	if err != nil {
		return "", err
	}
	return llm.StripCodeFence(text), nil
}

// HealthCheck reports whether a client was constructed.
func (c *Client) HealthCheck(context.Context) stage.Health {
	if c == nil || c.client == nil {
		return stage.Unhealthy("gemini", "client not configured")
	}
	return stage.Healthy("gemini")
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("gemini: no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("gemini: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
