// Package gtts provides a tts.Provider backed by the Google Translate
// text-to-speech endpoint — the same service the gTTS library wraps. Output
// is MP3.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/lberndt/sprachcoach/pkg/provider/tts"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"

	// maxChars is the per-request character limit enforced by the endpoint.
	maxChars = 200
)

// Option is a functional option for Provider.
type Option func(*Provider)

// WithEndpoint overrides the synthesis endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements tts.Provider against the Google Translate TTS endpoint.
type Provider struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Synthesize implements tts.Provider. Long texts are split into chunks of at
// most 200 characters (the endpoint's limit) and the MP3 segments are
// concatenated — MP3 frames are self-delimiting, so plain concatenation plays
// back correctly.
func (p *Provider) Synthesize(ctx context.Context, text, lang string) ([]byte, string, error) {
	if text == "" {
		return nil, "", fmt.Errorf("gtts: text must not be empty")
	}
	if lang == "" {
		lang = "en"
	}

	var audio []byte
	for _, chunk := range splitChunks(text, maxChars) {
		seg, err := p.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, "", err
		}
		audio = append(audio, seg...)
	}
	return audio, "audio/mpeg", nil
}

// fetchChunk synthesises a single chunk of at most maxChars characters.
func (p *Provider) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gtts: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts: synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtts: synthesize: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtts: read response: %w", err)
	}
	return data, nil
}

// splitChunks splits s into rune-safe chunks of at most n characters,
// preferring to break at spaces.
func splitChunks(s string, n int) []string {
	if utf8.RuneCountInString(s) <= n {
		return []string{s}
	}

	var chunks []string
	runes := []rune(s)
	for len(runes) > 0 {
		if len(runes) <= n {
			chunks = append(chunks, string(runes))
			break
		}
		cut := n
		for i := n; i > n/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		if len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	return chunks
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
