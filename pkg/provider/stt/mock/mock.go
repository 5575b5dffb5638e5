// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/lberndt/sprachcoach/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Audio is the audio payload passed to Transcribe.
	Audio []byte
	// Lang is the language tag passed to Transcribe.
	Lang string
}

// Provider is a mock implementation of stt.Provider.
// Zero values cause Transcribe to return ("", nil).
type Provider struct {
	mu sync.Mutex

	// Text is returned by Transcribe.
	Text string

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeCalls records every invocation of Transcribe in order.
	TranscribeCalls []TranscribeCall
}

// Transcribe records the call and returns Text, Err.
func (p *Provider) Transcribe(_ context.Context, audio []byte, lang string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, len(audio))
	copy(buf, audio)
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Audio: buf, Lang: lang})
	return p.Text, p.Err
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
