package verify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/lberndt/sprachcoach/internal/tutor/refine"
	"github.com/lberndt/sprachcoach/internal/verify"
	"github.com/lberndt/sprachcoach/pkg/provider/llm"
	llmmock "github.com/lberndt/sprachcoach/pkg/provider/llm/mock"
)

func newVerifier(p llm.Provider) *verify.Verifier {
	return verify.New(p, refine.NewKeywordClassifier())
}

func TestVerifyNoErrorShortCircuits(t *testing.T) {
	t.Parallel()
	for _, answer := range []string{"NO", "no error here", "KEIN Fehler", "CORRECT"} {
		p := &llmmock.Provider{
			Responses: []*llm.CompletionResponse{{Content: answer}},
		}
		v := newVerifier(p)

		verdict, err := v.Verify(context.Background(), "ich brauche Hilfe danke", "")
		if err != nil {
			t.Fatalf("Verify(%q): %v", answer, err)
		}
		if verdict == nil {
			t.Fatalf("Verify(%q): want verdict, got nil", answer)
		}
		if verdict.HasError {
			t.Errorf("answer %q: HasError want false", answer)
		}
		if len(p.CompleteCalls) != 1 {
			t.Errorf("answer %q: want 1 LLM call (no correction step), got %d", answer, len(p.CompleteCalls))
		}
	}
}

func TestVerifyExistenceCheckRequest(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{{Content: "NO"}},
	}
	v := newVerifier(p)

	if _, err := v.Verify(context.Background(), "hallo wie geht's", ""); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	req := p.CompleteCalls[0].Req
	if req.Temperature != 0 {
		t.Errorf("existence check temperature: want 0, got %v", req.Temperature)
	}
	if req.MaxTokens != 10 {
		t.Errorf("existence check max tokens: want 10, got %d", req.MaxTokens)
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "hallo wie geht's") {
		t.Errorf("existence check prompt missing student text: %+v", req.Messages)
	}
}

func TestVerifyCorrectionFlow(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{
			{Content: "YES"},
			{Content: "GERMAN: Du meinst: \"Ich brauche Hilfe\"\nENGLISH: You mean: \"I need help\"\nFIX: Verb must be in second position"},
		},
	}
	v := newVerifier(p)

	verdict, err := v.Verify(context.Background(), "ich Hilfe brauche", "I need help")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict == nil {
		t.Fatal("want verdict, got nil")
	}
	if !verdict.HasError {
		t.Error("HasError: want true")
	}
	if !strings.Contains(verdict.Reply, "Du meinst:") {
		t.Errorf("Reply: want marker, got %q", verdict.Reply)
	}
	if verdict.Explanation != "Verb must be in second position" {
		t.Errorf("Explanation: got %q", verdict.Explanation)
	}

	if len(p.CompleteCalls) != 2 {
		t.Fatalf("want 2 LLM calls, got %d", len(p.CompleteCalls))
	}
	second := p.CompleteCalls[1].Req
	if second.Temperature != 0.2 {
		t.Errorf("correction temperature: want 0.2, got %v", second.Temperature)
	}
	if !strings.Contains(second.Messages[0].Content, "I need help") {
		t.Error("correction prompt should carry the intended meaning gloss")
	}
}

func TestVerifyPunctuationOnlyCorrectionRejected(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{
			{Content: "YES"},
			{Content: "GERMAN: Du meinst: \"Ich habe Hunger.\"\nENGLISH: You mean: \"I am hungry.\"\nFIX: Add a comma and a period."},
		},
	}
	v := newVerifier(p)

	verdict, err := v.Verify(context.Background(), "ich habe Hunger", "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict == nil {
		t.Fatal("want verdict, got nil")
	}
	if verdict.HasError {
		t.Errorf("punctuation-only correction should be rejected: %+v", verdict)
	}
	if verdict.Explanation != "" {
		t.Errorf("Explanation: want cleared, got %q", verdict.Explanation)
	}
}

func TestVerifyMissingLabeledLines(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{
			{Content: "YES"},
			{Content: "The sentence should be: Ich brauche Hilfe"},
		},
	}
	v := newVerifier(p)

	verdict, err := v.Verify(context.Background(), "ich Hilfe brauche", "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict != nil {
		t.Errorf("unparseable correction: want nil verdict, got %+v", verdict)
	}
}

func TestVerifyProviderFailureYieldsNoVerdict(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{nil},
		Errs:      []error{llm.ErrUnavailable},
	}
	v := newVerifier(p)

	verdict, err := v.Verify(context.Background(), "ich Hilfe brauche", "")
	if err != nil {
		t.Fatalf("Verify: want swallowed failure, got %v", err)
	}
	if verdict != nil {
		t.Errorf("want nil verdict on provider failure, got %+v", verdict)
	}
}

func TestCheckerFallsBackToRules(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{nil},
		Errs:      []error{llm.ErrUnavailable},
	}
	c := verify.NewChecker(newVerifier(p), nil)

	verdict, err := c.CheckUtterance(context.Background(), "ich Hilfe brauche", "")
	if err != nil {
		t.Fatalf("CheckUtterance: %v", err)
	}
	if !verdict.HasError {
		t.Errorf("rule fallback should flag verb position: %+v", verdict)
	}
	if !strings.Contains(verdict.Reply, "Wortstellung") {
		t.Errorf("Reply: want word-order message, got %q", verdict.Reply)
	}
}

func TestCheckerRejectsEmptyText(t *testing.T) {
	t.Parallel()
	c := verify.NewChecker(newVerifier(&llmmock.Provider{}), nil)
	if _, err := c.CheckUtterance(context.Background(), "", ""); err == nil {
		t.Error("empty text: expected error, got nil")
	}
}
