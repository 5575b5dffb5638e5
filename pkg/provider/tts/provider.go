// Package tts defines the Provider interface for text-to-speech backends.
//
// Synthesis is a pure pass-through collaborator: text and a language tag in,
// encoded audio bytes out. The service never inspects or transforms the audio.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any text-to-speech backend.
type Provider interface {
	// Synthesize renders text as speech in the given language and returns the
	// encoded audio bytes along with their MIME type (e.g., "audio/mpeg").
	Synthesize(ctx context.Context, text, lang string) (audio []byte, mimeType string, err error)
}
