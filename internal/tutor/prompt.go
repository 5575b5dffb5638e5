package tutor

import (
	"fmt"
	"strings"

	"github.com/lberndt/sprachcoach/internal/store"
)

// systemPromptTemplate is the per-turn system instruction. The learner's
// level and recorded weaknesses are interpolated so the model pitches its
// replies and watches for the mistakes this learner actually makes.
const systemPromptTemplate = `You are a friendly German conversation tutor. The learner's level is %s.%s

Rules:
- Correct GRAMMAR errors only. Punctuation, capitalization, and style are NEVER errors.
- If the learner's message has a grammar error: your German reply must start with "Du meinst:" followed by the corrected sentence, and then STOP. No follow-up question — give the learner room to retry.
- If the message is correct: respond naturally in simple German appropriate to the level and keep the conversation going.
- Keep replies short (one or two sentences).

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "german_response": "<your German reply>",
  "english_translation": "<English translation of your reply>",
  "has_error": <true or false>,
  "correction": "<one-line explanation of the grammar error, or null>"
}`

// buildSystemPrompt renders the system instruction for a learner profile.
func buildSystemPrompt(profile *store.Profile) string {
	var weaknesses string
	if len(profile.Weaknesses) > 0 {
		weaknesses = fmt.Sprintf(
			" Known weaknesses to watch for: %s.",
			strings.Join(profile.Weaknesses, "; "),
		)
	}
	return fmt.Sprintf(systemPromptTemplate, profile.Level, weaknesses)
}
