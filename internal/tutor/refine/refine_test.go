package refine_test

import (
	"strings"
	"testing"

	"github.com/lberndt/sprachcoach/internal/tutor/refine"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"Woher kommen Sie?", "woher kommen sie"},
		{"   Spaced   Out   ", "spaced   out"},
		{"Hallo!", "hallo"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := refine.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q): want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"Hallo!", "Ich bin gut.", "Woher kommen Sie?"} {
		once := refine.Normalize(s)
		if twice := refine.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestSameContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hallo", "hallo!", true},
		{"Ich bin gut.", "ich bin gut", true},
		{"Ich bin gut", "Du bist gut", false},
	}
	for _, tc := range tests {
		if got := refine.SameContent(tc.a, tc.b); got != tc.want {
			t.Errorf("SameContent(%q, %q): want %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestKeywordClassifier(t *testing.T) {
	t.Parallel()
	c := refine.NewKeywordClassifier()
	tests := []struct {
		name        string
		explanation string
		want        refine.Classification
	}{
		{
			name:        "punctuation only",
			explanation: "Add a period at the end.",
			want:        refine.Classification{PunctuationOnly: true},
		},
		{
			name:        "grammar only",
			explanation: "Verb must be in second position.",
			want:        refine.Classification{GrammarPresent: true},
		},
		{
			name:        "punctuation plus grammar keeps grammar",
			explanation: "Missing comma, and the verb conjugation is wrong.",
			want:        refine.Classification{GrammarPresent: true},
		},
		{
			name:        "german keywords",
			explanation: "Satzzeichen fehlt am Ende.",
			want:        refine.Classification{PunctuationOnly: true},
		},
		{
			name:        "unrelated text",
			explanation: "Something else entirely.",
			want:        refine.Classification{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Classify(tc.explanation); got != tc.want {
				t.Errorf("Classify(%q): want %+v, got %+v", tc.explanation, tc.want, got)
			}
		})
	}
}

func TestPunctuationFilter(t *testing.T) {
	t.Parallel()
	f := refine.NewPunctuationFilter(refine.NewKeywordClassifier(), nil)

	t.Run("punctuation only is downgraded", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{
			HasError:    true,
			Reply:       "Du meinst: Ich habe Hunger.",
			Translation: "You mean: I am hungry.",
			Explanation: "Add a period at the end.",
		}
		got := f.Apply("ich habe hunger", v)
		if got.HasError {
			t.Error("HasError: want false")
		}
		if got.Explanation != "" {
			t.Errorf("Explanation: want cleared, got %q", got.Explanation)
		}
		if got.Reply == v.Reply {
			t.Error("Reply: want replaced with encouragement")
		}
	})

	t.Run("grammar correction is preserved", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{
			HasError:    true,
			Reply:       "Du meinst: Ich gehe nach Hause.",
			Translation: "You mean: I go home.",
			Explanation: "Verb 'gehe' must be in second position.",
		}
		if got := f.Apply("Ich nach Hause gehe", v); got != v {
			t.Errorf("grammar verdict changed: %+v", got)
		}
	})

	t.Run("no-error verdict is untouched", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{Reply: "Schön!", Translation: "Nice!"}
		if got := f.Apply("hallo", v); got != v {
			t.Errorf("no-error verdict changed: %+v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{HasError: true, Explanation: "Missing comma."}
		once := f.Apply("x", v)
		if twice := f.Apply("x", once); twice != once {
			t.Errorf("not idempotent: %+v != %+v", twice, once)
		}
	})
}

func TestHallucinationFilter(t *testing.T) {
	t.Parallel()
	f := refine.NewHallucinationFilter(nil)

	t.Run("identical content flips to affirmation", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{
			HasError:    true,
			Reply:       "Du meinst: Woher kommen Sie?",
			Translation: "Where do you come from?",
			Explanation: "Subject-verb agreement error",
		}
		got := f.Apply("woher kommen sie", v)
		if got.HasError {
			t.Error("HasError: want false")
		}
		if got.Explanation != "" {
			t.Errorf("Explanation: want cleared, got %q", got.Explanation)
		}
		if !strings.Contains(got.Reply, "Genau!") {
			t.Errorf("Reply: want affirmation, got %q", got.Reply)
		}
		if strings.Contains(got.Reply, refine.Marker) {
			t.Errorf("Reply: marker should be gone, got %q", got.Reply)
		}
	})

	t.Run("real correction is preserved", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{
			HasError:    true,
			Reply:       `Du meinst: "Ich brauche Hilfe"`,
			Translation: `You mean: "I need help"`,
			Explanation: "Verb must be in second position",
		}
		if got := f.Apply("ich Hilfe brauche", v); got != v {
			t.Errorf("real correction changed: %+v", got)
		}
	})

	t.Run("reply without marker is untouched", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{HasError: true, Reply: "Das ist falsch.", Explanation: "case"}
		if got := f.Apply("das ist falsch", v); got != v {
			t.Errorf("markerless verdict changed: %+v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		v := refine.Verdict{HasError: true, Reply: "Du meinst: Hallo!"}
		once := f.Apply("hallo", v)
		if twice := f.Apply("hallo", once); twice != once {
			t.Errorf("not idempotent: %+v != %+v", twice, once)
		}
	})
}

func TestExtractCorrection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		reply  string
		want   string
		wantOK bool
	}{
		{`Du meinst: "Ich brauche Hilfe"`, "Ich brauche Hilfe", true},
		{"Du meinst: Woher kommen Sie?", "Woher kommen Sie?", true},
		{"Sehr gut gemacht!", "", false},
	}
	for _, tc := range tests {
		got, ok := refine.ExtractCorrection(tc.reply)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ExtractCorrection(%q): want (%q, %v), got (%q, %v)", tc.reply, tc.want, tc.wantOK, got, ok)
		}
	}
}

func TestChainOrder(t *testing.T) {
	t.Parallel()
	punct := refine.NewPunctuationFilter(refine.NewKeywordClassifier(), nil)
	halluc := refine.NewHallucinationFilter(nil)

	// Hallucinated correction with a grammar-sounding explanation survives
	// the punctuation filter but not the hallucination filter.
	v := refine.Verdict{
		HasError:    true,
		Reply:       "Du meinst: Woher kommen Sie?",
		Translation: "Where do you come from?",
		Explanation: "Wrong pronoun case",
	}
	got := refine.Chain("woher kommen sie", v, punct, halluc)
	if got.HasError {
		t.Errorf("HasError after chain: want false, got %+v", got)
	}
}
