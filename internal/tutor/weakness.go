package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"

	"github.com/lberndt/sprachcoach/internal/store"
)

const (
	// maxWeaknesses caps the per-profile weakness list. Once full, new
	// weaknesses are silently dropped; the first five persist.
	maxWeaknesses = 5

	// maxWeaknessLen bounds the stored copy of a correction explanation.
	maxWeaknessLen = 50

	// weaknessSimilarity is the Jaro-Winkler score above which a new
	// weakness counts as a rephrasing of one already recorded.
	weaknessSimilarity = 0.93
)

// Tracker appends short correction summaries to a user's profile so the
// system prompt can steer future turns toward known trouble spots.
//
// Record reads the weakness list and writes it back wholesale, so the
// Tracker serialises its own calls. Concurrent turns handled by separate
// process instances can still lose an entry; the list is advisory, and a
// dropped weakness resurfaces the next time the learner makes the mistake.
type Tracker struct {
	profiles store.ProfileStore
	log      *slog.Logger

	mu sync.Mutex
}

// NewTracker returns a Tracker writing through the given profile store.
// A nil logger disables diagnostics.
func NewTracker(profiles store.ProfileStore, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Tracker{profiles: profiles, log: log}
}

// Record appends a truncated copy of explanation to the user's weakness
// list. No-op when the explanation is empty, the list is at capacity, or a
// near-duplicate is already recorded.
func (t *Tracker) Record(ctx context.Context, userID, explanation string) error {
	if explanation == "" {
		return nil
	}
	weakness := truncate(explanation, maxWeaknessLen)

	t.mu.Lock()
	defer t.mu.Unlock()

	profile, err := t.profiles.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("tutor: record weakness: %w", err)
	}
	if len(profile.Weaknesses) >= maxWeaknesses {
		t.log.Debug("weakness list at capacity, dropping", "user_id", userID, "weakness", weakness)
		return nil
	}
	for _, existing := range profile.Weaknesses {
		if matchr.JaroWinkler(strings.ToLower(existing), strings.ToLower(weakness), false) > weaknessSimilarity {
			t.log.Debug("near-duplicate weakness, dropping", "existing", existing, "new", weakness)
			return nil
		}
	}

	updated := append(append([]string(nil), profile.Weaknesses...), weakness)
	if err := t.profiles.UpdateProfile(ctx, userID, store.ProfileUpdate{Weaknesses: updated}); err != nil {
		return fmt.Errorf("tutor: record weakness: %w", err)
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
