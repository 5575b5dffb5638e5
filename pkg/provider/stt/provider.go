// Package stt defines the Provider interface for speech-to-text backends.
//
// The tutoring service treats transcription as a pure collaborator: encoded
// audio bytes in, recognised text out. No audio processing happens on our
// side — resampling, encoding, and endpointing are the backend's concern.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech indicates the backend processed the audio but could not
// recognise any speech in it. Handlers map it to a client error ("could not
// understand audio") rather than a server failure.
var ErrNoSpeech = errors.New("stt: no speech recognised")

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe converts the encoded audio bytes to text. lang is a BCP-47
	// language tag (e.g., "de-DE", "en-US"); an empty string lets the backend
	// auto-detect where supported.
	//
	// Returns ErrNoSpeech when the audio contains no recognisable speech.
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
}
