// Package store defines the persistence interfaces and domain records for the
// tutoring service: user profiles, tutor sessions, session messages, and the
// plain translation history.
//
// Implementations must serialise writes per row (single-row statements or
// transactions) so that two concurrent turns for the same user cannot lose
// updates. Reads that find nothing return (nil, nil) rather than an error.
package store

import (
	"context"
	"time"
)

// Proficiency levels follow the CEFR scale. LevelA1 is the default for
// lazily created profiles.
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelC2 = "C2"
)

// Message roles. Exactly one of these per message.
const (
	RoleUser   = "user"
	RoleTutor  = "tutor"
	RoleSystem = "system"
)

// TaskTypeFreeChat is the default session task type: unstructured
// conversation practice, as opposed to a structured drill.
const TaskTypeFreeChat = "free_chat"

// Profile is a user's tutoring profile. Created lazily on first read.
type Profile struct {
	// UserID is the opaque caller-supplied user identifier.
	UserID string

	// Level is the learner's proficiency level (A1..C2).
	Level string

	// Weaknesses is the capped, append-only list of recorded grammar
	// weaknesses. Managed by the weakness tracker.
	Weaknesses []string

	// Goals is the learner's stated goals.
	Goals []string

	// LastActive is bumped on every profile read or write.
	LastActive time.Time
}

// ProfileUpdate describes a partial profile mutation. Nil fields are left
// unchanged; non-nil slices replace the stored value wholesale.
type ProfileUpdate struct {
	Level      *string
	Weaknesses []string
	Goals      []string
}

// Session is a tutoring conversation thread.
type Session struct {
	ID        string
	UserID    string
	TaskType  string
	Active    bool
	Summary   string
	StartedAt time.Time
}

// Correction is the structured correction payload attached to a tutor message
// when the learner's input contained a confirmed grammar error.
type Correction struct {
	// Explanation is the one-line description of the error.
	Explanation string `json:"explanation"`

	// Corrected is the corrected sentence, when one could be extracted from
	// the tutor's reply.
	Corrected string `json:"corrected,omitempty"`
}

// Message is a single turn in a tutor session. Messages are append-only.
type Message struct {
	ID         int64
	SessionID  string
	Role       string
	Content    string
	Correction *Correction
	CreatedAt  time.Time
}

// HistoryEntry is one record in the plain translation history, separate from
// tutor sessions.
type HistoryEntry struct {
	ID             string
	UserID         string
	SourceLang     string
	TargetLang     string
	OriginalText   string
	TranslatedText string
	CreatedAt      time.Time
}

// ProfileStore persists per-user proficiency and weaknesses.
type ProfileStore interface {
	// GetProfile returns the user's profile, creating a default one (level
	// A1, empty weaknesses and goals) if none exists. Never returns (nil, nil).
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// UpdateProfile applies a partial update to the user's profile and bumps
	// LastActive. Updating an absent profile creates it first.
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error
}

// SessionStore persists tutoring conversation threads.
type SessionStore interface {
	// CreateSession starts a new active session for the user.
	CreateSession(ctx context.Context, userID, taskType string) (*Session, error)

	// GetActiveSession returns the most recently started active session for
	// the user, or (nil, nil) if there is none.
	GetActiveSession(ctx context.Context, userID string) (*Session, error)
}

// MessageStore persists the ordered messages of a session.
type MessageStore interface {
	// AddMessage appends a message to the session log. role must be one of
	// RoleUser, RoleTutor, RoleSystem.
	AddMessage(ctx context.Context, sessionID, role, content string, corr *Correction) error

	// GetRecentMessages returns the last limit messages of the session,
	// ordered oldest first.
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}

// HistoryStore persists the plain translation history.
type HistoryStore interface {
	// AddEntry appends a history entry, assigning ID and CreatedAt.
	AddEntry(ctx context.Context, e *HistoryEntry) error

	// ListEntries returns the user's history, newest first.
	ListEntries(ctx context.Context, userID string) ([]HistoryEntry, error)

	// ClearEntries deletes all of the user's history entries.
	ClearEntries(ctx context.Context, userID string) error
}

// Store bundles all persistence interfaces. Both the PostgreSQL and the
// in-memory implementations satisfy it.
type Store interface {
	ProfileStore
	SessionStore
	MessageStore
	HistoryStore
}

// ValidRole reports whether role is a recognised message role.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleTutor, RoleSystem:
		return true
	}
	return false
}

// ValidLevel reports whether level is a recognised CEFR proficiency level.
func ValidLevel(level string) bool {
	switch level {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}
