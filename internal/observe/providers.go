package observe

import (
	"context"
	"time"

	"github.com/lberndt/sprachcoach/pkg/provider/llm"
	"github.com/lberndt/sprachcoach/pkg/provider/stt"
	"github.com/lberndt/sprachcoach/pkg/provider/translate"
	"github.com/lberndt/sprachcoach/pkg/provider/tts"
)

// Provider decorators. Each wraps a provider interface so every call records
// its latency histogram plus the request and error counters, tagged with the
// configured provider name. Wrap once at startup; the decorators add no
// behavior beyond measurement.

// InstrumentLLM wraps p so completions are measured under the given name.
func InstrumentLLM(p llm.Provider, m *Metrics, name string) llm.Provider {
	return &instrumentedLLM{p: p, m: m, name: name}
}

// InstrumentSTT wraps p so transcriptions are measured under the given name.
func InstrumentSTT(p stt.Provider, m *Metrics, name string) stt.Provider {
	return &instrumentedSTT{p: p, m: m, name: name}
}

// InstrumentTTS wraps p so syntheses are measured under the given name.
func InstrumentTTS(p tts.Provider, m *Metrics, name string) tts.Provider {
	return &instrumentedTTS{p: p, m: m, name: name}
}

// InstrumentTranslate wraps p so translations are measured under the given
// name.
func InstrumentTranslate(p translate.Provider, m *Metrics, name string) translate.Provider {
	return &instrumentedTranslate{p: p, m: m, name: name}
}

// record emits the shared counter pair for one provider call.
func record(ctx context.Context, m *Metrics, name, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.RecordProviderError(ctx, name, kind)
	}
	m.RecordProviderRequest(ctx, name, kind, status)
}

type instrumentedLLM struct {
	p    llm.Provider
	m    *Metrics
	name string
}

func (i *instrumentedLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := i.p.Complete(ctx, req)
	i.m.LLMDuration.Record(ctx, time.Since(start).Seconds())
	record(ctx, i.m, i.name, "llm", err)
	return resp, err
}

type instrumentedSTT struct {
	p    stt.Provider
	m    *Metrics
	name string
}

func (i *instrumentedSTT) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	start := time.Now()
	text, err := i.p.Transcribe(ctx, audio, lang)
	i.m.STTDuration.Record(ctx, time.Since(start).Seconds())
	record(ctx, i.m, i.name, "stt", err)
	return text, err
}

type instrumentedTTS struct {
	p    tts.Provider
	m    *Metrics
	name string
}

func (i *instrumentedTTS) Synthesize(ctx context.Context, text, lang string) ([]byte, string, error) {
	start := time.Now()
	audio, mimeType, err := i.p.Synthesize(ctx, text, lang)
	i.m.TTSDuration.Record(ctx, time.Since(start).Seconds())
	record(ctx, i.m, i.name, "tts", err)
	return audio, mimeType, err
}

type instrumentedTranslate struct {
	p    translate.Provider
	m    *Metrics
	name string
}

func (i *instrumentedTranslate) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	start := time.Now()
	out, err := i.p.Translate(ctx, text, sourceLang, targetLang)
	i.m.TranslateDuration.Record(ctx, time.Since(start).Seconds())
	record(ctx, i.m, i.name, "translate", err)
	return out, err
}
