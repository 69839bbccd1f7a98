package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouter_Invoke(t *testing.T) {
	var gotBody chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test/model",
			"choices": []any{
				map[string]any{"message": map[string]any{"content": `{"ok": true}`}},
			},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	defer srv.Close()

	c := NewOpenRouter(OpenRouterConfig{APIKey: "test-key", Endpoint: srv.URL, Model: "test/model"})
	resp, err := c.Invoke(context.Background(), Request{Prompt: "hello", Temperature: 0.3})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if gotBody.Model != "test/model" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "hello" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.Temperature != 0.3 {
		t.Errorf("temperature = %v", gotBody.Temperature)
	}
	if resp.Content != `{"ok": true}` {
		t.Errorf("Content = %v", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestOpenRouter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenRouter(OpenRouterConfig{Endpoint: srv.URL})
	if _, err := c.Invoke(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Error("expected error on 429")
	}
}

func TestOpenRouter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewOpenRouter(OpenRouterConfig{Endpoint: srv.URL})
	if _, err := c.Invoke(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Error("expected error on empty choices")
	}
}

func TestAnthropic_Invoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("x-api-key"); key != "test-key" {
			t.Errorf("x-api-key = %q", key)
		}
		if v := r.Header.Get("anthropic-version"); v == "" {
			t.Error("anthropic-version header missing")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-test",
			"content": []any{
				map[string]any{"type": "text", "text": "part one "},
				map[string]any{"type": "text", "text": "part two"},
			},
			"usage": map[string]any{"input_tokens": 7, "output_tokens": 3},
		})
	}))
	defer srv.Close()

	c := NewAnthropic(AnthropicConfig{APIKey: "test-key", Endpoint: srv.URL})
	resp, err := c.Invoke(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	parts, ok := resp.Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("Content = %#v, want 2 parts", resp.Content)
	}
}

func TestScript_ReplaysInOrder(t *testing.T) {
	s := NewScript(
		ScriptStep{Text: "first"},
		ScriptStep{Err: errors.New("boom")},
		ScriptStep{Text: "third"},
	)

	resp, err := s.Invoke(context.Background(), Request{})
	if err != nil || resp.Content != "first" {
		t.Errorf("step 1 = %v, %v", resp, err)
	}
	if _, err := s.Invoke(context.Background(), Request{}); err == nil {
		t.Error("step 2 should fail")
	}
	resp, err = s.Invoke(context.Background(), Request{})
	if err != nil || resp.Content != "third" {
		t.Errorf("step 3 = %v, %v", resp, err)
	}
	if _, err := s.Invoke(context.Background(), Request{}); err == nil {
		t.Error("exhausted script should fail")
	}
	if s.Calls() != 4 {
		t.Errorf("Calls = %d", s.Calls())
	}
}
