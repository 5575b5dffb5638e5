// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the tutoring pipeline sends
// correct CompletionRequests and to feed controlled responses without a live
// backend. Set the response fields before use; mutating them during a
// concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Responses: []*llm.CompletionResponse{{Content: "NO"}},
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/lberndt/sprachcoach/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
//
// Each call to Complete consumes the next entry of Responses; once the slice
// is exhausted the last entry is repeated. Errs is consulted the same way, so
// a two-step caller can be given "first call fails, second succeeds" without
// extra plumbing. Zero values cause Complete to return (nil, nil).
type Provider struct {
	mu sync.Mutex

	// Responses is the sequence of responses returned by successive Complete
	// calls. May contain nil entries.
	Responses []*llm.CompletionResponse

	// Errs is the sequence of errors returned by successive Complete calls.
	// A nil entry means the corresponding call succeeds.
	Errs []error

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall
}

// Complete records the call and returns the next configured response/error pair.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.CompleteCalls)
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})

	var resp *llm.CompletionResponse
	if n := len(p.Responses); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		resp = p.Responses[idx]
	}

	var err error
	if n := len(p.Errs); n > 0 {
		i := len(p.CompleteCalls) - 1
		if i >= n {
			i = n - 1
		}
		err = p.Errs[i]
	}
	return resp, err
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = nil
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
