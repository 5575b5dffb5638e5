// Package verify implements one-shot utterance checking: a two-step
// language-model verification protocol with a deterministic rule-based
// fallback, used outside of conversational tutor sessions.
//
// Step one asks the model a strict YES/NO question: does the utterance
// contain a real grammar error? Punctuation, capitalization, and style are
// explicitly excluded. Only when the answer is YES does step two ask for a
// correction, using a mandated three-line response template. This split
// exists because a single "correct this" request makes the model invent
// corrections for flawless sentences far more often than a bare
// classification question does.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lberndt/sprachcoach/internal/tutor/refine"
	"github.com/lberndt/sprachcoach/pkg/provider/llm"
)

const (
	defaultCheckTimeout   = 10 * time.Second
	defaultCorrectTimeout = 15 * time.Second

	checkMaxTokens   = 10
	correctMaxTokens = 300

	correctTemperature = 0.2
)

// checkPromptTemplate is the step-one classification prompt. The model must
// answer with a bare YES or NO; anything containing a negative-class token
// counts as NO.
const checkPromptTemplate = `You are a strict German grammar checker.

Student sentence: "%s"

CRITICAL: IGNORE ALL PUNCTUATION! Commas, periods, etc. are NOT grammar errors!

Does this have a REAL grammar error?

IGNORE (these are NOT errors):
- Missing commas
- Missing periods
- Missing quotes
- Capitalization
- Style

ONLY flag REAL errors:
- Wrong verb conjugation: "ich brauchst"
- Wrong verb position: "ich Hilfe brauche"
- Wrong pronoun: "wie heißt mich"
- Nonsense: "ich bin 20 und 5 Jahre alt"

If only punctuation is missing, answer: NO

Answer ONLY: YES or NO`

// correctPromptTemplate is the step-two correction prompt. The three
// labeled lines are parsed by prefix; a missing GERMAN or ENGLISH line
// voids the whole verdict.
const correctPromptTemplate = `Student said: "%s"

This has a grammar error. Give the correction.

IMPORTANT: Start your German response with "Du meinst:" followed by the correct sentence.

Example:
If student says "ich Hilfe brauche", respond:
GERMAN: Du meinst: "Ich brauche Hilfe"
ENGLISH: You mean: "I need help"
FIX: Verb must be in second position

Format:
GERMAN: Du meinst: [correct sentence in quotes]
ENGLISH: You mean: [translation]
FIX: [Brief one-line explanation of the error]`

// negativeTokens short-circuit step one to a no-error verdict.
var negativeTokens = []string{"NO", "KEIN", "CORRECT"}

// Option is a functional option for configuring a [Verifier].
type Option func(*Verifier)

// WithTimeouts overrides the per-step timeouts.
func WithTimeouts(check, correct time.Duration) Option {
	return func(v *Verifier) {
		v.checkTimeout = check
		v.correctTimeout = correct
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(v *Verifier) {
		v.log = log
	}
}

// Verifier runs the two-step verification protocol against an
// [llm.Provider]. It is safe for concurrent use.
type Verifier struct {
	llm            llm.Provider
	punctuation    *refine.PunctuationFilter
	log            *slog.Logger
	checkTimeout   time.Duration
	correctTimeout time.Duration
}

// New returns a Verifier backed by the given provider. The classifier
// drives the punctuation-only rejection of step-two explanations.
func New(provider llm.Provider, classifier refine.Classifier, opts ...Option) *Verifier {
	v := &Verifier{
		llm:            provider,
		log:            slog.New(slog.DiscardHandler),
		checkTimeout:   defaultCheckTimeout,
		correctTimeout: defaultCorrectTimeout,
	}
	for _, o := range opts {
		o(v)
	}
	v.punctuation = refine.NewPunctuationFilter(classifier, v.log)
	return v
}

// Verify runs the two-step protocol on a student utterance. meaning is an
// optional English gloss of what the student intended to say. It returns
// (nil, nil) when the model was unreachable or its correction response was
// unusable; the caller is expected to fall back to [RuleCheck]. A non-nil
// verdict has already passed the punctuation-only rejection.
func (v *Verifier) Verify(ctx context.Context, studentText, meaning string) (*refine.Verdict, error) {
	hasError, err := v.checkExistence(ctx, studentText)
	if err != nil {
		v.log.Warn("error-existence check failed", "error", err)
		return nil, nil
	}
	if !hasError {
		verdict := refine.NoError()
		return &verdict, nil
	}

	verdict, err := v.generateCorrection(ctx, studentText, meaning)
	if err != nil {
		v.log.Warn("correction generation failed", "error", err)
		return nil, nil
	}
	if verdict == nil {
		return nil, nil
	}

	refined := v.punctuation.Apply(studentText, *verdict)
	return &refined, nil
}

// checkExistence issues the zero-temperature YES/NO classification request.
func (v *Verifier) checkExistence(ctx context.Context, studentText string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.checkTimeout)
	defer cancel()

	resp, err := v.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(checkPromptTemplate, studentText)},
		},
		Temperature: 0,
		MaxTokens:   checkMaxTokens,
	})
	if err != nil {
		return false, fmt.Errorf("verify: existence check: %w", err)
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Content))
	v.log.Debug("error-existence check", "answer", answer)
	for _, tok := range negativeTokens {
		if strings.Contains(answer, tok) {
			return false, nil
		}
	}
	return true, nil
}

// generateCorrection issues the step-two request and parses the labeled
// lines. A response missing the GERMAN or ENGLISH line yields (nil, nil).
func (v *Verifier) generateCorrection(ctx context.Context, studentText, meaning string) (*refine.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, v.correctTimeout)
	defer cancel()

	prompt := fmt.Sprintf(correctPromptTemplate, studentText)
	if meaning != "" {
		prompt += fmt.Sprintf("\n\nThe student wanted to say: \"%s\"", meaning)
	}

	resp, err := v.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: correctTemperature,
		MaxTokens:   correctMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("verify: correction: %w", err)
	}

	german := extractLine(resp.Content, "GERMAN:")
	english := extractLine(resp.Content, "ENGLISH:")
	fix := extractLine(resp.Content, "FIX:")

	if german == "" || english == "" {
		v.log.Warn("correction response missing labeled lines", "content", resp.Content)
		return nil, nil
	}

	return &refine.Verdict{
		HasError:    true,
		Reply:       german,
		Translation: english,
		Explanation: fix,
	}, nil
}

// extractLine returns the text after prefix on the first line that starts
// with it, or "" when no line matches.
func extractLine(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
