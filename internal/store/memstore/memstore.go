// Package memstore provides an in-memory store.Store implementation. It backs
// unit tests and DSN-less development runs; data does not survive a restart.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lberndt/sprachcoach/internal/store"
)

// Store is an in-memory implementation of store.Store. Safe for concurrent
// use; a single mutex serialises all access, which also gives the per-row
// write serialisation the interface requires.
type Store struct {
	mu       sync.Mutex
	profiles map[string]*store.Profile
	sessions map[string]*store.Session
	// sessionOrder holds session IDs in creation order, so that
	// GetActiveSession can break StartedAt ties deterministically.
	sessionOrder []string
	messages     map[string][]store.Message
	history      map[string][]store.HistoryEntry
	nextMsg      int64
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		profiles: map[string]*store.Profile{},
		sessions: map[string]*store.Session{},
		messages: map[string][]store.Message{},
		history:  map[string][]store.HistoryEntry{},
	}
}

// GetProfile implements store.ProfileStore.
func (s *Store) GetProfile(_ context.Context, userID string) (*store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = &store.Profile{
			UserID:     userID,
			Level:      store.LevelA1,
			Weaknesses: []string{},
			Goals:      []string{},
		}
		s.profiles[userID] = p
	}
	p.LastActive = time.Now().UTC()
	return cloneProfile(p), nil
}

// UpdateProfile implements store.ProfileStore.
func (s *Store) UpdateProfile(_ context.Context, userID string, upd store.ProfileUpdate) error {
	if upd.Level != nil && !store.ValidLevel(*upd.Level) {
		return fmt.Errorf("memstore: update profile: invalid level %q", *upd.Level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = &store.Profile{
			UserID:     userID,
			Level:      store.LevelA1,
			Weaknesses: []string{},
			Goals:      []string{},
		}
		s.profiles[userID] = p
	}
	if upd.Level != nil {
		p.Level = *upd.Level
	}
	if upd.Weaknesses != nil {
		p.Weaknesses = append([]string(nil), upd.Weaknesses...)
	}
	if upd.Goals != nil {
		p.Goals = append([]string(nil), upd.Goals...)
	}
	p.LastActive = time.Now().UTC()
	return nil
}

// CreateSession implements store.SessionStore.
func (s *Store) CreateSession(_ context.Context, userID, taskType string) (*store.Session, error) {
	if taskType == "" {
		taskType = store.TaskTypeFreeChat
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &store.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskType:  taskType,
		Active:    true,
		StartedAt: time.Now().UTC(),
	}
	s.sessions[sess.ID] = sess
	s.sessionOrder = append(s.sessionOrder, sess.ID)
	out := *sess
	return &out, nil
}

// GetActiveSession implements store.SessionStore.
func (s *Store) GetActiveSession(_ context.Context, userID string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Walk newest-created first; creation order matches StartedAt order.
	for i := len(s.sessionOrder) - 1; i >= 0; i-- {
		sess := s.sessions[s.sessionOrder[i]]
		if sess.UserID == userID && sess.Active {
			out := *sess
			return &out, nil
		}
	}
	return nil, nil
}

// AddMessage implements store.MessageStore.
func (s *Store) AddMessage(_ context.Context, sessionID, role, content string, corr *store.Correction) error {
	if !store.ValidRole(role) {
		return fmt.Errorf("memstore: add message: invalid role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("memstore: add message: unknown session %q", sessionID)
	}

	s.nextMsg++
	m := store.Message{
		ID:        s.nextMsg,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if corr != nil {
		c := *corr
		m.Correction = &c
	}
	s.messages[sessionID] = append(s.messages[sessionID], m)
	return nil
}

// GetRecentMessages implements store.MessageStore.
func (s *Store) GetRecentMessages(_ context.Context, sessionID string, limit int) ([]store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]store.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// AddEntry implements store.HistoryStore.
func (s *Store) AddEntry(_ context.Context, e *store.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	s.history[e.UserID] = append(s.history[e.UserID], *e)
	return nil
}

// ListEntries implements store.HistoryStore.
func (s *Store) ListEntries(_ context.Context, userID string) ([]store.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Entries are appended chronologically, so newest-first is the reverse.
	stored := s.history[userID]
	entries := make([]store.HistoryEntry, len(stored))
	for i, e := range stored {
		entries[len(stored)-1-i] = e
	}
	return entries, nil
}

// ClearEntries implements store.HistoryStore.
func (s *Store) ClearEntries(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.history, userID)
	return nil
}

// cloneProfile returns a deep copy so callers cannot mutate stored state.
// The copied slices stay non-nil even when empty; GetProfile promises an
// empty list, not a nil one.
func cloneProfile(p *store.Profile) *store.Profile {
	out := *p
	out.Weaknesses = make([]string, len(p.Weaknesses))
	copy(out.Weaknesses, p.Weaknesses)
	out.Goals = make([]string, len(p.Goals))
	copy(out.Goals, p.Goals)
	return &out
}
