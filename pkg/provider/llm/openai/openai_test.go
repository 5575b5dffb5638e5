package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lberndt/sprachcoach/pkg/provider/llm"
	"github.com/lberndt/sprachcoach/pkg/provider/llm/openai"
)

// newCaptureServer returns a chat-completions stub that decodes each request
// body into captured and answers with a fixed completion.
func newCaptureServer(t *testing.T, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		*captured = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "NO"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 1, "total_tokens": 13}
		}`))
	}))
}

func TestCompleteSendsZeroTemperature(t *testing.T) {
	t.Parallel()
	var captured map[string]any
	srv := newCaptureServer(t, &captured)
	defer srv.Close()

	p, err := openai.New("test-key", "test-model", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Hat dieser Satz einen Fehler?"}},
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "NO" {
		t.Errorf("Content: want NO, got %q", resp.Content)
	}

	temp, ok := captured["temperature"]
	if !ok {
		t.Fatalf("temperature absent from wire request, body keys: %v", captured)
	}
	if temp.(float64) != 0 {
		t.Errorf("temperature: want 0, got %v", temp)
	}
	if mt, ok := captured["max_completion_tokens"]; !ok || mt.(float64) != 10 {
		t.Errorf("max_completion_tokens: want 10, got %v", captured["max_completion_tokens"])
	}
}

func TestCompleteSendsConfiguredTemperature(t *testing.T) {
	t.Parallel()
	var captured map[string]any
	srv := newCaptureServer(t, &captured)
	defer srv.Close()

	p, err := openai.New("test-key", "test-model", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Erzähl mir etwas."}},
		Temperature: 0.7,
	}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	temp, ok := captured["temperature"]
	if !ok {
		t.Fatalf("temperature absent from wire request, body keys: %v", captured)
	}
	if temp.(float64) != 0.7 {
		t.Errorf("temperature: want 0.7, got %v", temp)
	}
}
