// Package translate defines the Provider interface for text translation
// backends. Translation is a pass-through collaborator: the service forwards
// text and a language pair and stores the result, nothing more.
//
// Implementations must be safe for concurrent use.
package translate

import "context"

// Provider is the abstraction over any translation backend.
type Provider interface {
	// Translate converts text from sourceLang to targetLang. Language codes
	// are two-letter ISO 639-1 (e.g., "en", "de").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
