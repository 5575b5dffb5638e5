package tutor_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/lberndt/sprachcoach/internal/store/memstore"
	"github.com/lberndt/sprachcoach/internal/tutor"
)

func TestTrackerRecordsWeakness(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	if err := tr.Record(ctx, "u1", "Verb must be in second position"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != 1 || p.Weaknesses[0] != "Verb must be in second position" {
		t.Errorf("Weaknesses: got %v", p.Weaknesses)
	}
}

func TestTrackerEmptyExplanationIsNoOp(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	if err := tr.Record(ctx, "u1", ""); err != nil {
		t.Fatalf("Record empty: %v", err)
	}
	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != 0 {
		t.Errorf("Weaknesses: want none, got %v", p.Weaknesses)
	}
}

func TestTrackerTruncatesLongExplanations(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	long := strings.Repeat("ä", 80)
	if err := tr.Record(ctx, "u1", long); err != nil {
		t.Fatalf("Record: %v", err)
	}
	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != 1 {
		t.Fatalf("Weaknesses: want 1, got %v", p.Weaknesses)
	}
	if got := len([]rune(p.Weaknesses[0])); got != 50 {
		t.Errorf("truncation: want 50 runes, got %d", got)
	}
}

func TestTrackerCapAtFive(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	explanations := []string{
		"Verb must be in second position",
		"Wrong article gender for 'Haus'",
		"Dative case required after 'mit'",
		"Separable verb prefix goes to the end",
		"Adjective ending does not match the noun",
		"Wrong auxiliary verb with 'gehen'",
	}
	for _, e := range explanations {
		if err := tr.Record(ctx, "u1", e); err != nil {
			t.Fatalf("Record %q: %v", e, err)
		}
	}

	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != 5 {
		t.Fatalf("cap: want 5, got %d (%v)", len(p.Weaknesses), p.Weaknesses)
	}
	// First five persist; the sixth is silently dropped.
	for i, want := range explanations[:5] {
		if p.Weaknesses[i] != want {
			t.Errorf("Weaknesses[%d]: want %q, got %q", i, want, p.Weaknesses[i])
		}
	}
}

func TestTrackerConcurrentRecordsKeepAllEntries(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	explanations := []string{
		"Verb must be in second position",
		"Wrong article gender for 'Haus'",
		"Dative case required after 'mit'",
		"Separable verb prefix goes to the end",
	}
	var wg sync.WaitGroup
	for _, e := range explanations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Record(ctx, "u1", e); err != nil {
				t.Errorf("Record %q: %v", e, err)
			}
		}()
	}
	wg.Wait()

	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != len(explanations) {
		t.Errorf("concurrent records: want %d entries, got %v", len(explanations), p.Weaknesses)
	}
}

func TestTrackerDropsNearDuplicates(t *testing.T) {
	t.Parallel()
	st := memstore.New()
	tr := tutor.NewTracker(st, nil)
	ctx := context.Background()

	if err := tr.Record(ctx, "u1", "Verb must be in second position."); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Same explanation, minor rephrasing: dropped.
	if err := tr.Record(ctx, "u1", "Verb must be in second position"); err != nil {
		t.Fatalf("Record duplicate: %v", err)
	}
	// Genuinely different weakness: kept.
	if err := tr.Record(ctx, "u1", "Wrong article gender for 'Haus'"); err != nil {
		t.Fatalf("Record distinct: %v", err)
	}

	p, _ := st.GetProfile(ctx, "u1")
	if len(p.Weaknesses) != 2 {
		t.Errorf("dedupe: want 2 entries, got %v", p.Weaknesses)
	}
}
