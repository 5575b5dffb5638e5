// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/lberndt/sprachcoach/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Text is the text passed to Synthesize.
	Text string
	// Lang is the language tag passed to Synthesize.
	Lang string
}

// Provider is a mock implementation of tts.Provider.
// Zero values cause Synthesize to return (nil, "", nil).
type Provider struct {
	mu sync.Mutex

	// Audio is returned by Synthesize.
	Audio []byte

	// MimeType is returned by Synthesize.
	MimeType string

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// SynthesizeCalls records every invocation of Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize records the call and returns Audio, MimeType, Err.
func (p *Provider) Synthesize(_ context.Context, text, lang string) ([]byte, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Lang: lang})
	return p.Audio, p.MimeType, p.Err
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
