// Package mock provides a test double for the translate.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/lberndt/sprachcoach/pkg/provider/translate"
)

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	// Text is the text passed to Translate.
	Text string
	// SourceLang is the source language code passed to Translate.
	SourceLang string
	// TargetLang is the target language code passed to Translate.
	TargetLang string
}

// Provider is a mock implementation of translate.Provider.
// Zero values cause Translate to return ("", nil).
type Provider struct {
	mu sync.Mutex

	// Text is returned by Translate.
	Text string

	// Err, if non-nil, is returned as the error from Translate.
	Err error

	// TranslateCalls records every invocation of Translate in order.
	TranslateCalls []TranslateCall
}

// Translate records the call and returns Text, Err.
func (p *Provider) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranslateCalls = append(p.TranslateCalls, TranslateCall{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	return p.Text, p.Err
}

// Ensure Provider implements translate.Provider at compile time.
var _ translate.Provider = (*Provider)(nil)
