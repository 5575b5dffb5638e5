package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/lberndt/sprachcoach/pkg/provider/llm"
	llmmock "github.com/lberndt/sprachcoach/pkg/provider/llm/mock"
)

func TestInstrumentedLLMRecordsSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	inner := &llmmock.Provider{
		Responses: []*llm.CompletionResponse{{Content: "hallo"}},
	}
	p := InstrumentLLM(inner, m, "groq")

	resp, err := p.Complete(ctx, llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hallo" {
		t.Errorf("content = %q, want passthrough", resp.Content)
	}

	rm := collect(t, reader)

	dur := findMetric(rm, "sprachcoach.llm.duration")
	if dur == nil {
		t.Fatal("llm duration histogram not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Errorf("llm duration not recorded: %+v", dur.Data)
	}

	reqs := findMetric(rm, "sprachcoach.provider.requests")
	if reqs == nil {
		t.Fatal("request counter not found")
	}
	sum := reqs.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 {
		t.Fatalf("want 1 request series, got %d", len(sum.DataPoints))
	}
	dp := sum.DataPoints[0]
	if name, _ := dp.Attributes.Value(attribute.Key("provider")); name.AsString() != "groq" {
		t.Errorf("provider attribute = %q, want groq", name.AsString())
	}
	if status, _ := dp.Attributes.Value(attribute.Key("status")); status.AsString() != "ok" {
		t.Errorf("status attribute = %q, want ok", status.AsString())
	}

	if findMetric(rm, "sprachcoach.provider.errors") != nil {
		t.Error("error counter recorded on success")
	}
}

func TestInstrumentedLLMRecordsError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	inner := &llmmock.Provider{Errs: []error{errors.New("boom")}}
	p := InstrumentLLM(inner, m, "ollama")

	if _, err := p.Complete(ctx, llm.CompletionRequest{}); err == nil {
		t.Fatal("want passthrough error")
	}

	rm := collect(t, reader)

	errsMet := findMetric(rm, "sprachcoach.provider.errors")
	if errsMet == nil {
		t.Fatal("error counter not found")
	}
	sum := errsMet.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("error count: %+v", sum.DataPoints)
	}

	reqs := findMetric(rm, "sprachcoach.provider.requests")
	if reqs == nil {
		t.Fatal("request counter not found")
	}
	dp := reqs.Data.(metricdata.Sum[int64]).DataPoints[0]
	if status, _ := dp.Attributes.Value(attribute.Key("status")); status.AsString() != "error" {
		t.Errorf("status attribute = %q, want error", status.AsString())
	}
}
