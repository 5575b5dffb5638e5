package verify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lberndt/sprachcoach/internal/tutor/refine"
)

// ErrEmptyText is returned when a check request carries no student text.
var ErrEmptyText = errors.New("verify: student text must not be empty")

// Checker is the public entry point for one-shot utterance checking. It
// tries the language-model [Verifier] first and falls back to [RuleCheck]
// when no verdict comes back, so a check always produces a usable answer.
type Checker struct {
	verifier *Verifier
	log      *slog.Logger
}

// NewChecker returns a Checker around the given verifier. A nil logger
// disables diagnostics.
func NewChecker(verifier *Verifier, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Checker{verifier: verifier, log: log}
}

// CheckUtterance checks a single student utterance. meaning is an optional
// English gloss. The only error condition is empty input text; model
// failures degrade to the deterministic rule-based verdict.
func (c *Checker) CheckUtterance(ctx context.Context, studentText, meaning string) (refine.Verdict, error) {
	if studentText == "" {
		return refine.Verdict{}, ErrEmptyText
	}

	verdict, err := c.verifier.Verify(ctx, studentText, meaning)
	if err == nil && verdict != nil {
		return *verdict, nil
	}

	c.log.Info("falling back to rule-based checker", "student_text", studentText)
	return RuleCheck(studentText), nil
}
