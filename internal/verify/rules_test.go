package verify_test

import (
	"strings"
	"testing"

	"github.com/lberndt/sprachcoach/internal/verify"
)

func TestRuleCheck(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		text      string
		wantError bool
		wantIn    string
	}{
		{
			name:      "verb not in second position",
			text:      "ich Hilfe brauche",
			wantError: true,
			wantIn:    "Wortstellung",
		},
		{
			name:      "verb in second position is fine",
			text:      "du bist gut",
			wantError: false,
		},
		{
			name:      "verb second with trailing words",
			text:      "ich brauche Hilfe danke",
			wantError: false,
		},
		{
			name:      "mich and dich together",
			text:      "ich liebe mich dich",
			wantError: true,
			wantIn:    "Pronomen",
		},
		{
			name:      "ich brauchst conjugation slip",
			text:      "heute ich brauchst etwas",
			wantError: true,
			wantIn:    "brauche",
		},
		{
			name:      "wie heißt mich pronoun slip",
			text:      "hallo wie heißt mich",
			wantError: true,
			wantIn:    "wie heißt du",
		},
		{
			name:      "unknown structure gets a hint without a flag",
			text:      "morgen vielleicht Kino",
			wantError: false,
			wantIn:    "Struktur",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := verify.RuleCheck(tc.text)
			if v.HasError != tc.wantError {
				t.Errorf("HasError: want %v, got %v (%+v)", tc.wantError, v.HasError, v)
			}
			if tc.wantIn != "" && !strings.Contains(v.Reply, tc.wantIn) {
				t.Errorf("Reply: want substring %q, got %q", tc.wantIn, v.Reply)
			}
			if v.Reply == "" || v.Translation == "" {
				t.Error("verdict must always carry a reply and translation")
			}
		})
	}
}
