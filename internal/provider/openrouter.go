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

// Default OpenRouter configuration. The endpoint speaks the OpenAI
// chat-completions wire format, so pointing it at any compatible gateway works.
const (
	DefaultOpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultOpenRouterModel    = "kwaipilot/kat-coder-pro:free"
	DefaultOpenRouterTimeout  = 120 * time.Second
	DefaultOpenRouterTokens   = 8192
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey    string
	Endpoint  string        // Default: DefaultOpenRouterEndpoint
	Model     string        // Default model when a request leaves Model empty
	Timeout   time.Duration // Default: 120s
	MaxTokens int           // Default response cap when a request leaves MaxTokens zero
}

// OpenRouter implements Provider against an OpenAI-compatible chat endpoint.
type OpenRouter struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenRouter creates an OpenRouter client. Environment variables
// OPENROUTER_MODEL and OPENROUTER_ENDPOINT override the compiled defaults
// when the config leaves them empty.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.Model == "" {
		if env := os.Getenv("OPENROUTER_MODEL"); env != "" {
			cfg.Model = env
		} else {
			cfg.Model = DefaultOpenRouterModel
		}
	}
	if cfg.Endpoint == "" {
		if env := os.Getenv("OPENROUTER_ENDPOINT"); env != "" {
			cfg.Endpoint = env
		} else {
			cfg.Endpoint = DefaultOpenRouterEndpoint
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOpenRouterTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultOpenRouterTokens
	}
	return &OpenRouter{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *OpenRouter) Name() string { return "openrouter" }

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the prompt as a single user message and returns the first
// choice's content.
func (c *OpenRouter) Invoke(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter status %d: %s", httpResp.StatusCode, truncate(respBody, 200))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}

	return &Response{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
