// Package tutor implements the conversational tutor engine: multi-turn
// practice sessions where a language model replies in German, flags grammar
// errors, and has its verdicts cleaned up by the deterministic filters in
// the refine subpackage before anything reaches the learner.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lberndt/sprachcoach/internal/store"
	"github.com/lberndt/sprachcoach/internal/tutor/refine"
	"github.com/lberndt/sprachcoach/pkg/provider/llm"
)

const (
	defaultHistoryLimit = 10
	defaultTurnTimeout  = 12 * time.Second
	defaultTemperature  = 0.7
	replyMaxTokens      = 500
)

// Fixed reply used when the language model is unreachable or returns
// garbage. The turn is not retried; the learner just tries again.
const (
	apologyReply       = "Entschuldigung, ich habe gerade technische Probleme. Bitte versuch es gleich noch einmal!"
	apologyTranslation = "Sorry, I'm having technical trouble right now. Please try again in a moment!"
)

// ErrEmptyMessage is returned when a turn is submitted without text.
var ErrEmptyMessage = errors.New("tutor: message must not be empty")

// ErrMalformedOutput marks a model response that could not be parsed into
// the expected structure. It is handled inside the engine and never
// surfaces to callers.
var ErrMalformedOutput = errors.New("tutor: malformed model output")

// Turn outcome labels reported to [Metrics].
const (
	OutcomeError      = "error"
	OutcomeNoError    = "no_error"
	OutcomeDowngraded = "downgraded"
	OutcomeFallback   = "fallback"
)

// Metrics receives per-turn observations. Implemented by observe.Metrics;
// a nil Metrics disables reporting.
type Metrics interface {
	ObserveTurn(ctx context.Context, outcome string, d time.Duration)
}

// SessionStart is the result of resuming or creating a session.
type SessionStart struct {
	Session *store.Session
	Profile *store.Profile
}

// TurnResult is one completed tutor turn.
type TurnResult struct {
	SessionID   string
	Reply       string
	Translation string
	HasError    bool
	// Explanation is the one-line error description, empty when HasError
	// is false.
	Explanation string
}

// modelResponse is the structured JSON object the model is instructed to
// return.
type modelResponse struct {
	GermanResponse     string `json:"german_response"`
	EnglishTranslation string `json:"english_translation"`
	HasError           bool   `json:"has_error"`
	Correction         string `json:"correction"`
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithHistoryLimit sets how many recent messages form the context window.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.historyLimit = n
	}
}

// WithTurnTimeout bounds the language-model call of a single turn.
func WithTurnTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithTemperature sets the sampling temperature for tutor replies.
func WithTemperature(temp float64) Option {
	return func(e *Engine) {
		e.temperature = temp
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithMetrics attaches a per-turn metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine drives tutor sessions. It is safe for concurrent use; per-user
// write serialisation is the store's responsibility.
type Engine struct {
	store   store.Store
	llm     llm.Provider
	filters []refine.Filter
	tracker *Tracker
	metrics Metrics

	log          *slog.Logger
	historyLimit int
	timeout      time.Duration
	temperature  float64
}

// New returns an Engine. The classifier feeds the punctuation-only filter;
// pass refine.NewKeywordClassifier() unless you have something better.
func New(st store.Store, provider llm.Provider, classifier refine.Classifier, opts ...Option) *Engine {
	e := &Engine{
		store:        st,
		llm:          provider,
		log:          slog.New(slog.DiscardHandler),
		historyLimit: defaultHistoryLimit,
		timeout:      defaultTurnTimeout,
		temperature:  defaultTemperature,
	}
	for _, o := range opts {
		o(e)
	}
	e.filters = []refine.Filter{
		refine.NewPunctuationFilter(classifier, e.log),
		refine.NewHallucinationFilter(e.log),
	}
	e.tracker = NewTracker(st, e.log)
	return e
}

// ResumeOrCreate returns the user's most recently started active session,
// creating a fresh one when none exists. The profile is fetched (and lazily
// created) alongside.
func (e *Engine) ResumeOrCreate(ctx context.Context, userID, taskType string) (*SessionStart, error) {
	if taskType == "" {
		taskType = store.TaskTypeFreeChat
	}

	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tutor: resume session: %w", err)
	}

	sess, err := e.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tutor: resume session: %w", err)
	}
	if sess == nil {
		sess, err = e.store.CreateSession(ctx, userID, taskType)
		if err != nil {
			return nil, fmt.Errorf("tutor: create session: %w", err)
		}
		e.log.Info("started tutor session", "user_id", userID, "session_id", sess.ID, "task_type", sess.TaskType)
	}
	return &SessionStart{Session: sess, Profile: profile}, nil
}

// SubmitTurn runs one practice turn: persist the user message, assemble
// context, ask the model, refine its verdict, persist the reply, and track
// any surviving weakness. An empty sessionID resumes or creates the user's
// active session.
//
// Model failures never fail the turn; the learner gets a fixed apologetic
// reply instead.
func (e *Engine) SubmitTurn(ctx context.Context, userID, sessionID, message string) (*TurnResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	start := time.Now()

	if sessionID == "" {
		resumed, err := e.ResumeOrCreate(ctx, userID, "")
		if err != nil {
			return nil, err
		}
		sessionID = resumed.Session.ID
	}

	if err := e.store.AddMessage(ctx, sessionID, store.RoleUser, message, nil); err != nil {
		return nil, fmt.Errorf("tutor: log user message: %w", err)
	}

	// Profile and history land in different tables; fetch both at once.
	var (
		profile *store.Profile
		history []store.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.store.GetProfile(gctx, userID)
		profile = p
		return err
	})
	g.Go(func() error {
		m, err := e.store.GetRecentMessages(gctx, sessionID, e.historyLimit)
		history = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tutor: assemble context: %w", err)
	}

	verdict, genErr := e.generate(ctx, profile, history)
	outcome := OutcomeNoError
	if genErr != nil {
		e.log.Warn("tutor turn degraded to apology", "session_id", sessionID, "error", genErr)
		verdict = refine.Verdict{Reply: apologyReply, Translation: apologyTranslation}
		outcome = OutcomeFallback
	} else {
		raw := verdict
		verdict = refine.Chain(message, verdict, e.filters...)
		switch {
		case verdict.HasError:
			outcome = OutcomeError
		case raw.HasError:
			outcome = OutcomeDowngraded
		}
	}

	var corr *store.Correction
	if verdict.HasError {
		corr = &store.Correction{Explanation: verdict.Explanation}
		if corrected, ok := refine.ExtractCorrection(verdict.Reply); ok {
			corr.Corrected = corrected
		}
	}
	if err := e.store.AddMessage(ctx, sessionID, store.RoleTutor, verdict.Reply, corr); err != nil {
		return nil, fmt.Errorf("tutor: log tutor reply: %w", err)
	}

	if verdict.HasError {
		if err := e.tracker.Record(ctx, userID, verdict.Explanation); err != nil {
			// Losing a weakness entry must not fail the turn.
			e.log.Warn("recording weakness failed", "user_id", userID, "error", err)
		}
	}

	if e.metrics != nil {
		e.metrics.ObserveTurn(ctx, outcome, time.Since(start))
	}

	return &TurnResult{
		SessionID:   sessionID,
		Reply:       verdict.Reply,
		Translation: verdict.Translation,
		HasError:    verdict.HasError,
		Explanation: verdict.Explanation,
	}, nil
}

// generate performs the single structured model call for a turn. The
// just-persisted user message is already the last history entry.
func (e *Engine) generate(ctx context.Context, profile *store.Profile, history []store.Message) (refine.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		switch m.Role {
		case store.RoleTutor:
			role = llm.RoleAssistant
		case store.RoleSystem:
			role = llm.RoleSystem
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: buildSystemPrompt(profile),
		Messages:     messages,
		Temperature:  e.temperature,
		MaxTokens:    replyMaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		return refine.Verdict{}, fmt.Errorf("tutor: complete: %w", err)
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(stripMarkdown(resp.Content)), &parsed); err != nil {
		return refine.Verdict{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	if parsed.GermanResponse == "" {
		return refine.Verdict{}, fmt.Errorf("%w: empty german_response", ErrMalformedOutput)
	}

	return refine.Verdict{
		HasError:    parsed.HasError,
		Reply:       parsed.GermanResponse,
		Translation: parsed.EnglishTranslation,
		Explanation: parsed.Correction,
	}, nil
}

// stripMarkdown removes optional markdown code fences (```json ... ```)
// that some models wrap around JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
