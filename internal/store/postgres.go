package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for all tutoring tables. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id     TEXT PRIMARY KEY,
    level       TEXT NOT NULL DEFAULT 'A1',
    weaknesses  JSONB NOT NULL DEFAULT '[]',
    goals       JSONB NOT NULL DEFAULT '[]',
    last_active TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tutor_sessions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    task_type  TEXT NOT NULL DEFAULT 'free_chat',
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    summary    TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tutor_sessions_user_active
    ON tutor_sessions(user_id, is_active, started_at DESC);
CREATE TABLE IF NOT EXISTS tutor_messages (
    id         BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES tutor_sessions(id) ON DELETE CASCADE,
    role       TEXT NOT NULL CHECK (role IN ('user', 'tutor', 'system')),
    content    TEXT NOT NULL,
    correction JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tutor_messages_session ON tutor_messages(session_id, id);
CREATE TABLE IF NOT EXISTS translation_history (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    source_lang     TEXT NOT NULL,
    target_lang     TEXT NOT NULL,
    original_text   TEXT NOT NULL,
    translated_text TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_translation_history_user ON translation_history(user_id, created_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. Weakness and
// goal lists are serialised as JSONB. All mutations are single-row statements,
// so concurrent turns for the same user serialise at the row level.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating all tables
// and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// GetProfile implements [ProfileStore]. The upsert creates a default profile
// row on first access and bumps last_active on every subsequent one, in a
// single statement.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	const query = `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET last_active = now()
		RETURNING user_id, level, weaknesses, goals, last_active`

	var p Profile
	var weaknessesJSON, goalsJSON []byte
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Level, &weaknessesJSON, &goalsJSON, &p.LastActive,
	)
	if err != nil {
		return nil, fmt.Errorf("store: get profile %q: %w", userID, err)
	}
	if err := json.Unmarshal(weaknessesJSON, &p.Weaknesses); err != nil {
		return nil, fmt.Errorf("store: unmarshal weaknesses: %w", err)
	}
	if err := json.Unmarshal(goalsJSON, &p.Goals); err != nil {
		return nil, fmt.Errorf("store: unmarshal goals: %w", err)
	}
	return &p, nil
}

// UpdateProfile implements [ProfileStore]. The row is created first if absent
// so that a partial update on a never-seen user behaves like an update on a
// default profile.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	if upd.Level != nil && !ValidLevel(*upd.Level) {
		return fmt.Errorf("store: update profile: invalid level %q", *upd.Level)
	}

	const ensure = `INSERT INTO user_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.db.Exec(ctx, ensure, userID); err != nil {
		return fmt.Errorf("store: ensure profile %q: %w", userID, err)
	}

	sets := []string{"last_active = now()"}
	args := []any{userID}

	if upd.Level != nil {
		args = append(args, *upd.Level)
		sets = append(sets, fmt.Sprintf("level = $%d", len(args)))
	}
	if upd.Weaknesses != nil {
		data, err := json.Marshal(emptySlice(upd.Weaknesses))
		if err != nil {
			return fmt.Errorf("store: marshal weaknesses: %w", err)
		}
		args = append(args, data)
		sets = append(sets, fmt.Sprintf("weaknesses = $%d", len(args)))
	}
	if upd.Goals != nil {
		data, err := json.Marshal(emptySlice(upd.Goals))
		if err != nil {
			return fmt.Errorf("store: marshal goals: %w", err)
		}
		args = append(args, data)
		sets = append(sets, fmt.Sprintf("goals = $%d", len(args)))
	}

	query := "UPDATE user_profiles SET " + strings.Join(sets, ", ") + " WHERE user_id = $1"
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: update profile %q: %w", userID, err)
	}
	return nil
}

// CreateSession implements [SessionStore].
func (s *PostgresStore) CreateSession(ctx context.Context, userID, taskType string) (*Session, error) {
	if taskType == "" {
		taskType = TaskTypeFreeChat
	}

	const query = `
		INSERT INTO tutor_sessions (id, user_id, task_type)
		VALUES ($1, $2, $3)
		RETURNING started_at`

	sess := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		TaskType: taskType,
		Active:   true,
	}
	err := s.db.QueryRow(ctx, query, sess.ID, userID, taskType).Scan(&sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create session for %q: %w", userID, err)
	}
	return sess, nil
}

// GetActiveSession implements [SessionStore]. When several active sessions
// exist for a user, the most recently started one wins.
func (s *PostgresStore) GetActiveSession(ctx context.Context, userID string) (*Session, error) {
	const query = `
		SELECT id, user_id, task_type, is_active, summary, started_at
		FROM tutor_sessions
		WHERE user_id = $1 AND is_active
		ORDER BY started_at DESC, id DESC
		LIMIT 1`

	var sess Session
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&sess.ID, &sess.UserID, &sess.TaskType, &sess.Active, &sess.Summary, &sess.StartedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get active session for %q: %w", userID, err)
	}
	return &sess, nil
}

// AddMessage implements [MessageStore].
func (s *PostgresStore) AddMessage(ctx context.Context, sessionID, role, content string, corr *Correction) error {
	if !ValidRole(role) {
		return fmt.Errorf("store: add message: invalid role %q", role)
	}

	var corrJSON []byte
	if corr != nil {
		var err error
		corrJSON, err = json.Marshal(corr)
		if err != nil {
			return fmt.Errorf("store: marshal correction: %w", err)
		}
	}

	const query = `
		INSERT INTO tutor_messages (session_id, role, content, correction)
		VALUES ($1, $2, $3, $4)`
	if _, err := s.db.Exec(ctx, query, sessionID, role, content, corrJSON); err != nil {
		return fmt.Errorf("store: add message to %q: %w", sessionID, err)
	}
	return nil
}

// GetRecentMessages implements [MessageStore]: the last limit messages,
// presented oldest first.
func (s *PostgresStore) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	const query = `
		SELECT id, session_id, role, content, correction, created_at FROM (
			SELECT id, session_id, role, content, correction, created_at
			FROM tutor_messages
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent ORDER BY id ASC`

	rows, err := s.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: get recent messages for %q: %w", sessionID, err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var corrJSON []byte
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &corrJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		if len(corrJSON) > 0 {
			m.Correction = &Correction{}
			if err := json.Unmarshal(corrJSON, m.Correction); err != nil {
				return nil, fmt.Errorf("store: unmarshal correction: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get recent messages: %w", err)
	}
	return msgs, nil
}

// AddEntry implements [HistoryStore].
func (s *PostgresStore) AddEntry(ctx context.Context, e *HistoryEntry) error {
	e.ID = uuid.NewString()

	const query = `
		INSERT INTO translation_history (id, user_id, source_lang, target_lang, original_text, translated_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := s.db.QueryRow(ctx, query,
		e.ID, e.UserID, e.SourceLang, e.TargetLang, e.OriginalText, e.TranslatedText,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: add history entry: %w", err)
	}
	return nil
}

// ListEntries implements [HistoryStore].
func (s *PostgresStore) ListEntries(ctx context.Context, userID string) ([]HistoryEntry, error) {
	const query = `
		SELECT id, user_id, source_lang, target_lang, original_text, translated_text, created_at
		FROM translation_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list history for %q: %w", userID, err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceLang, &e.TargetLang,
			&e.OriginalText, &e.TranslatedText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	return entries, nil
}

// ClearEntries implements [HistoryStore]. Clearing an empty history is not an
// error.
func (s *PostgresStore) ClearEntries(ctx context.Context, userID string) error {
	const query = `DELETE FROM translation_history WHERE user_id = $1`
	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("store: clear history for %q: %w", userID, err)
	}
	return nil
}

// emptySlice returns s if non-nil, otherwise an empty non-nil slice. This
// ensures JSON marshalling produces "[]" instead of "null".
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
