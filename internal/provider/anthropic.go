package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Default Anthropic configuration.
const (
	DefaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel    = "claude-sonnet-4-5-20250929"
	DefaultAnthropicTimeout  = 120 * time.Second
	DefaultAnthropicTokens   = 8192

	anthropicVersion = "2023-06-01"
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey    string
	Endpoint  string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Anthropic implements Provider against the Anthropic messages API. Responses
// arrive as a list of content blocks; they are passed through untouched and
// flattened by the extraction layer.
type Anthropic struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewAnthropic creates an Anthropic client. ANTHROPIC_MODEL and
// ANTHROPIC_ENDPOINT override the compiled defaults when the config leaves
// them empty.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		if env := os.Getenv("ANTHROPIC_MODEL"); env != "" {
			cfg.Model = env
		} else {
			cfg.Model = DefaultAnthropicModel
		}
	}
	if cfg.Endpoint == "" {
		if env := os.Getenv("ANTHROPIC_ENDPOINT"); env != "" {
			cfg.Endpoint = env
		} else {
			cfg.Endpoint = DefaultAnthropicEndpoint
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultAnthropicTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultAnthropicTokens
	}
	return &Anthropic{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Anthropic) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string           `json:"model"`
	Content []map[string]any `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the prompt as a single user message and returns the content
// blocks as a part list.
func (c *Anthropic) Invoke(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic status %d: %s", httpResp.StatusCode, truncate(respBody, 200))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", parsed.Error.Message)
	}

	parts := make([]any, 0, len(parsed.Content))
	for _, block := range parsed.Content {
		parts = append(parts, block)
	}

	return &Response{
		Content: parts,
		Model:   parsed.Model,
		Usage: Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}, nil
}
