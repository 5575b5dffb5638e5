package anyllm

import (
	"testing"

	"github.com/lberndt/sprachcoach/pkg/provider/llm"
)

func TestBuildParamsSendsZeroTemperature(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "test-model"}

	params := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Hat dieser Satz einen Fehler?"}},
		Temperature: 0,
		MaxTokens:   10,
	})

	if params.Temperature == nil {
		t.Fatal("Temperature: want explicit 0, got unset")
	}
	if *params.Temperature != 0 {
		t.Errorf("Temperature: want 0, got %v", *params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 10 {
		t.Errorf("MaxTokens: want 10, got %v", params.MaxTokens)
	}
}

func TestBuildParamsSendsConfiguredTemperature(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "test-model"}

	params := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Erzähl mir etwas."}},
		Temperature: 0.7,
	})

	if params.Temperature == nil || *params.Temperature != 0.7 {
		t.Errorf("Temperature: want 0.7, got %v", params.Temperature)
	}
}

func TestBuildParamsPrependsSystemPrompt(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "test-model"}

	params := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "Du bist ein Deutschlehrer.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "Hallo!"}},
	})

	if len(params.Messages) != 2 {
		t.Fatalf("Messages: want 2, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != "system" || params.Messages[0].Content != "Du bist ein Deutschlehrer." {
		t.Errorf("system message: got %+v", params.Messages[0])
	}
}
