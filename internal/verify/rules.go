package verify

import (
	"fmt"
	"strings"

	"github.com/lberndt/sprachcoach/internal/tutor/refine"
)

// Closed word lists for the deterministic fallback. Deliberately tiny: the
// rules only catch the beginner mistakes the fallback was written for.
var (
	fallbackVerbs = []string{
		"bin", "bist", "ist", "sind", "habe", "hast", "hat", "haben",
		"brauche", "brauchst", "braucht", "brauchen",
		"liebe", "liebst", "liebt", "lieben", "mag", "magst",
	}
	fallbackSubjects = []string{"ich", "du", "er", "sie", "es", "wir", "ihr"}
)

// RuleCheck is the deterministic fallback checker used when the
// language-model verifier yields no verdict. It never calls any external
// service and always returns a usable verdict.
//
// Checks, in order: verb-second-position violations for sentences opening
// with a known subject pronoun, the mich/dich double-object mix-up, the
// "ich brauchst" conjugation slip, and the "wie heißt mich" pronoun slip.
// Anything else gets a gentle word-order hint with no error flag.
func RuleCheck(studentText string) refine.Verdict {
	lower := strings.ToLower(studentText)
	words := strings.Fields(lower)

	if len(words) >= 2 && containsWord(fallbackSubjects, words[0]) {
		subject := words[0]
		for i, w := range words {
			if !containsWord(fallbackVerbs, w) {
				continue
			}
			if i != 1 {
				return refine.Verdict{
					HasError:    true,
					Reply:       fmt.Sprintf("Falsche Wortstellung! Das Verb '%s' muss an zweiter Stelle stehen. Richtig: '%s %s ...'", w, subject, w),
					Translation: fmt.Sprintf("Wrong word order! The verb '%s' must be in second position. Correct: '%s %s ...'", w, subject, w),
					Explanation: fmt.Sprintf("In German, the verb must be in second position. Say: '%s %s ...' not '%s'", subject, w, studentText),
				}
			}
			break
		}
	}

	if containsWord(words, "mich") && containsWord(words, "dich") {
		return refine.Verdict{
			HasError:    true,
			Reply:       "Zu viele Pronomen! Für 'I love you' sag nur: 'Ich liebe dich' (ohne 'mich').",
			Translation: "Too many pronouns! For 'I love you' just say: 'Ich liebe dich' (without 'mich').",
			Explanation: "Use 'Ich liebe dich' (I love you) OR 'Du liebst mich' (You love me) - not both pronouns together.",
		}
	}

	if strings.Contains(lower, "ich brauchst") {
		return refine.Verdict{
			HasError:    true,
			Reply:       "Falsch! Bei 'ich' sagst du 'brauche', nicht 'brauchst'. Richtig: 'ich brauche'.",
			Translation: "Wrong! With 'ich' you say 'brauche', not 'brauchst'. Correct: 'ich brauche'.",
			Explanation: "Use 'ich brauche' not 'ich brauchst'. The verb ending '-st' is for 'du'.",
		}
	}

	if strings.Contains(lower, "wie heißt mich") || strings.Contains(lower, "wie heißt mir") {
		return refine.Verdict{
			HasError:    true,
			Reply:       "Du meinst 'wie heißt du?' wenn du jemanden nach seinem Namen fragst. 'Mich' passt hier nicht.",
			Translation: "You mean 'what's your name?' when asking someone's name. 'Mich' doesn't fit here.",
			Explanation: "Use 'wie heißt du?' to ask someone's name, not 'wie heißt mich'",
		}
	}

	return refine.Verdict{
		Reply:       "Hmm, die Struktur wirkt ungewöhnlich. Versuch die Reihenfolge: Subjekt + Verb + Objekt.",
		Translation: "Hmm, the structure seems unusual. Try the order: Subject + Verb + Object.",
	}
}

func containsWord(words []string, w string) bool {
	for _, v := range words {
		if v == w {
			return true
		}
	}
	return false
}
