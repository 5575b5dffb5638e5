package refine

import "strings"

// Classification is the outcome of inspecting a correction explanation.
type Classification struct {
	// PunctuationOnly is true when the explanation mentions punctuation or
	// capitalization and nothing grammatical.
	PunctuationOnly bool

	// GrammarPresent is true when the explanation mentions at least one
	// grammatical concept.
	GrammarPresent bool
}

// Classifier decides whether a correction explanation describes a real
// grammar issue or merely punctuation/capitalization. The keyword-based
// default can be swapped for something smarter without touching the
// filter pipeline.
type Classifier interface {
	Classify(explanation string) Classification
}

// Default keyword tables. English and German forms are both listed because
// the model explains errors in whichever language it happens to pick.
var (
	defaultPunctuationKeywords = []string{
		"comma", "komma", "period", "punkt", "punctuation", "satzzeichen",
		"capitalization", "großschreibung",
	}
	defaultGrammarKeywords = []string{
		"verb", "conjugation", "position", "pronoun", "order",
		"wortstellung", "konjugation", "case", "article", "gender",
	}
)

// KeywordClassifier classifies explanations by case-insensitive substring
// scan over two keyword tables.
type KeywordClassifier struct {
	punctuation []string
	grammar     []string
}

// KeywordOption is a functional option for [NewKeywordClassifier].
type KeywordOption func(*KeywordClassifier)

// WithPunctuationKeywords replaces the punctuation keyword table.
func WithPunctuationKeywords(words ...string) KeywordOption {
	return func(c *KeywordClassifier) {
		c.punctuation = words
	}
}

// WithGrammarKeywords replaces the grammar keyword table.
func WithGrammarKeywords(words ...string) KeywordOption {
	return func(c *KeywordClassifier) {
		c.grammar = words
	}
}

// NewKeywordClassifier returns a classifier with the default keyword tables.
func NewKeywordClassifier(opts ...KeywordOption) *KeywordClassifier {
	c := &KeywordClassifier{
		punctuation: defaultPunctuationKeywords,
		grammar:     defaultGrammarKeywords,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify implements [Classifier].
func (c *KeywordClassifier) Classify(explanation string) Classification {
	lower := strings.ToLower(explanation)
	grammar := containsAny(lower, c.grammar)
	return Classification{
		PunctuationOnly: containsAny(lower, c.punctuation) && !grammar,
		GrammarPresent:  grammar,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

var _ Classifier = (*KeywordClassifier)(nil)
