// Package refine implements the deterministic post-processing applied to
// model-produced correction verdicts.
//
// Language models asked to correct learner German routinely assert errors
// that are not errors: missing commas, capitalization, or a "correction"
// that merely restates the learner's own sentence. The filters in this
// package downgrade such verdicts to no-error so the learner is never
// scolded for a sentence that was fine. Every filter is idempotent and
// never upgrades a no-error verdict to an error.
package refine

import (
	"log/slog"
	"strings"
)

// Marker is the fixed lead-in that precedes a proposed correction in the
// tutor's German reply. The text after it is the corrected sentence.
const Marker = "Du meinst:"

// Canned no-error replies used when a spurious correction is discarded.
const (
	encourageReply       = "Perfekt, mach weiter!"
	encourageTranslation = "Perfect, go ahead!"
	affirmPrefix         = "Genau! "
)

// Verdict is the structured outcome of a correction attempt, either from
// the one-shot verifier or from a conversational tutor turn.
type Verdict struct {
	// HasError reports whether the utterance contains a confirmed grammar
	// error after all filtering.
	HasError bool

	// Reply is the German-language tutor reply shown to the learner.
	Reply string

	// Translation is the English rendering of Reply.
	Translation string

	// Explanation is the one-line description of the error. Empty when
	// HasError is false.
	Explanation string
}

// NoError returns a canned encouragement verdict.
func NoError() Verdict {
	return Verdict{
		Reply:       encourageReply,
		Translation: encourageTranslation,
	}
}

// Filter is one deterministic refinement step. Filters receive the
// learner's original utterance alongside the verdict and may only ever
// downgrade an error to no-error.
type Filter interface {
	Apply(userText string, v Verdict) Verdict
}

// PunctuationFilter discards corrections whose explanation is about
// punctuation or capitalization rather than grammar.
type PunctuationFilter struct {
	classifier Classifier
	log        *slog.Logger
}

// NewPunctuationFilter returns a PunctuationFilter using the given
// classifier. A nil logger disables diagnostics.
func NewPunctuationFilter(classifier Classifier, log *slog.Logger) *PunctuationFilter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &PunctuationFilter{classifier: classifier, log: log}
}

// Apply implements [Filter]. An error verdict whose explanation mentions
// only punctuation keywords and no grammar keyword is replaced by the
// canned encouragement.
func (f *PunctuationFilter) Apply(_ string, v Verdict) Verdict {
	if !v.HasError || v.Explanation == "" {
		return v
	}
	cls := f.classifier.Classify(v.Explanation)
	if !cls.PunctuationOnly {
		return v
	}
	f.log.Debug("discarding punctuation-only correction", "explanation", v.Explanation)
	return NoError()
}

// HallucinationFilter discards corrections whose marker-delimited corrected
// sentence is, after normalization, identical to what the learner wrote.
// The model invented an error where none exists.
type HallucinationFilter struct {
	log *slog.Logger
}

// NewHallucinationFilter returns a HallucinationFilter. A nil logger
// disables diagnostics.
func NewHallucinationFilter(log *slog.Logger) *HallucinationFilter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &HallucinationFilter{log: log}
}

// Apply implements [Filter]. When the correction restates the learner's
// sentence, the verdict flips to no-error and the reply becomes an
// affirmation of the (identical) corrected text.
func (f *HallucinationFilter) Apply(userText string, v Verdict) Verdict {
	if !v.HasError {
		return v
	}
	corrected, ok := ExtractCorrection(v.Reply)
	if !ok || !SameContent(userText, corrected) {
		return v
	}
	f.log.Debug("discarding hallucinated correction", "user_text", userText, "corrected", corrected)
	v.HasError = false
	v.Explanation = ""
	v.Reply = affirmPrefix + corrected
	return v
}

// ExtractCorrection returns the corrected sentence following [Marker] in a
// tutor reply, with surrounding quotes and whitespace removed. ok is false
// when the reply carries no marker.
func ExtractCorrection(reply string) (corrected string, ok bool) {
	_, after, found := strings.Cut(reply, Marker)
	if !found {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(after), `"„“‚'`), true
}

// Chain applies filters in order and returns the final verdict.
func Chain(userText string, v Verdict, filters ...Filter) Verdict {
	for _, f := range filters {
		v = f.Apply(userText, v)
	}
	return v
}

var (
	_ Filter = (*PunctuationFilter)(nil)
	_ Filter = (*HallucinationFilter)(nil)
)
