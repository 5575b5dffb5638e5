// Package llm defines the Provider interface for language-model backends.
//
// A provider wraps a remote chat-completion API (e.g., Groq's OpenAI-compatible
// endpoint, or any backend reachable through any-llm-go) and exposes a uniform
// request/response interface so the tutoring pipeline never couples to a
// specific SDK.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly. Failures caused by the backend being unreachable,
// returning a non-success status, or timing out must be reported as errors
// wrapping [ErrUnavailable] so callers can distinguish "the model is down"
// from programming errors and fall back to deterministic behaviour.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the language-model backend could not be reached or
// did not return a successful response. Callers treat it as recoverable: the
// tutoring pipeline degrades to canned replies or the rule-based checker
// instead of surfacing it.
var ErrUnavailable = errors.New("llm: backend unavailable")

// Usage holds token accounting information returned by the backend.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages and
	// system prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
}

// CompletionRequest carries everything the model needs to produce a response.
// A zero-value request is invalid; at minimum Messages must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation history. The last message is
	// typically from the "user" role and drives the response.
	Messages []Message

	// SystemPrompt is an optional high-priority instruction injected before
	// the conversation history.
	SystemPrompt string

	// Temperature controls output randomness in [0.0, 2.0]. 0.0 requests
	// greedy decoding — the existence check in the correction verifier relies
	// on this for a stable YES/NO answer.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int

	// JSONResponse requests a machine-parseable JSON object response where the
	// backend supports a structured output mode. Providers without native
	// support may ignore this flag; callers must still validate the payload.
	JSONResponse bool
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the model's reply. When JSONResponse was
	// requested this is the serialized JSON object.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any chat-completion backend.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// Transport failures, non-success statuses, and deadline expiry are
	// returned as errors wrapping [ErrUnavailable]. Other errors indicate a
	// malformed request and are not retried by callers.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
