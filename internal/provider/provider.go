// Package provider defines the completion-provider boundary: something that
// accepts a prompt plus generation settings and returns free-form model text.
// The pipeline treats implementations as black boxes and only inspects the
// returned content.
package provider

import "context"

// Request is one completion invocation.
type Request struct {
	Prompt      string
	Model       string  // model identifier; empty means the provider's default
	Temperature float64 // sampling temperature, passed through as-is
	MaxTokens   int     // response token cap; 0 means the provider's default
}

// Usage reports token accounting when the provider supplies it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the raw model output. Content is either a plain string or a
// list of message parts (maps carrying a "text" key); the extraction layer
// normalizes both shapes.
type Response struct {
	Content any
	Model   string
	Usage   Usage
}

// Provider is the external completion service. Implementations own their own
// timeout and transport policy; the pipeline never retries at this layer
// beyond what the stage fallback rules dictate.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, req Request) (*Response, error)
}
