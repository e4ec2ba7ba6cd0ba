// Package coach drives the role-play session: scenario selection,
// persona switching, time caps, conversation turns, and score gating.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcpointlabs/salescoach/internal/domain"
	"github.com/arcpointlabs/salescoach/internal/llm"
	"github.com/arcpointlabs/salescoach/internal/scenario"
	"github.com/arcpointlabs/salescoach/internal/scoring"
	"github.com/arcpointlabs/salescoach/internal/store"
	"github.com/google/uuid"
)

// Turn events describe what a trainee message produced.
const (
	EventReply         = "reply"
	EventFallback      = "fallback"
	EventPersonaSwitch = "persona_switch"
	EventTimeout       = "timeout"
	EventClosed        = "closed"
)

const (
	timeoutNotice = "I'm sorry, I have to run to another meeting. Thanks for the conversation; we can pick this up another time."
	fallbackReply = "Sorry, I couldn't respond just now. Could you repeat that?"
	closedReply   = "Sounds good. Let's make it official and get the paperwork going."
)

var (
	// ErrSessionClosed is returned for trainee messages after close.
	ErrSessionClosed = errors.New("session is closed")
	// ErrNoSession is returned when ending a session that never started.
	ErrNoSession = errors.New("no active session")
	// ErrEmptyMessage is returned for blank trainee input.
	ErrEmptyMessage = errors.New("message is empty")
)

// Config holds the completion parameters for role-play turns.
type Config struct {
	Model       string
	Temperature float64
}

// Service owns the session state machine and the conversation driver.
type Service struct {
	scenarios *scenario.Store
	client    llm.Client
	policy    scoring.Policy
	repo      store.Repository
	sessions  *SessionManager
	log       TranscriptLogger
	cfg       Config

	now func() time.Time
}

// NewService wires the coach with its collaborators. A nil logger
// disables transcript logging.
func NewService(scenarios *scenario.Store, client llm.Client, policy scoring.Policy, repo store.Repository, sessions *SessionManager, log TranscriptLogger, cfg Config) *Service {
	if log == nil {
		log = noopTranscriptLogger{}
	}
	return &Service{
		scenarios: scenarios,
		client:    client,
		policy:    policy,
		repo:      repo,
		sessions:  sessions,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// TurnResult is the outcome of one trainee message.
type TurnResult struct {
	Event   string              `json:"event"`
	Reply   domain.Message      `json:"reply"`
	State   domain.SessionState `json:"state"`
	Persona string              `json:"persona"`
	Score   *domain.ScoreResult `json:"score,omitempty"`
}

// EndResult is the outcome of ending a session.
type EndResult struct {
	Score *domain.ScoreResult `json:"score"`
	Saved bool                `json:"saved"`
	// SaveError carries a leaderboard write failure. The score itself is
	// unaffected.
	SaveError string `json:"save_error,omitempty"`
}

// Start creates or resets the trainee's session for a scenario. Any
// prior state is discarded; unknown scenario ids fall back to the first
// scenario in the bank.
func (s *Service) Start(traineeID, tab, scenarioID string) *domain.Session {
	sc := s.scenarios.ByID(scenarioID)

	h := s.sessions.acquire(sessionKey(traineeID, tab))
	h.mu.Lock()
	defer h.mu.Unlock()

	sess := &domain.Session{
		ID:         uuid.NewString(),
		TraineeID:  traineeID,
		ScenarioID: sc.ID,
		State:      domain.StateNotStarted,
	}
	sess.SetSystem(BuildSystemPrompt(sc, 0))
	h.sess = sess

	slog.Info("session started", "trainee_id", traineeID, "session_id", sess.ID, "scenario_id", sc.ID)
	return snapshot(sess)
}

// HandleMessage runs one turn of the role-play. At most one completion
// call is made; none on switch, timeout, close, or frozen turns.
func (s *Service) HandleMessage(ctx context.Context, traineeID, tab, text string) (*TurnResult, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	h := s.sessions.acquire(sessionKey(traineeID, tab))
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess == nil {
		h.sess = s.freshSession(traineeID, "")
	}
	sess := h.sess
	sc := s.scenarios.ByID(sess.ScenarioID)

	switch sess.State {
	case domain.StateClosed:
		return nil, ErrSessionClosed
	case domain.StateTimedOut:
		// Frozen: no appends, no completions. The trainee must end the
		// session to get a score.
		return s.turn(sess, sc, EventTimeout, domain.Message{Role: domain.RoleAssistant, Content: timeoutNotice}), nil
	}

	now := s.now()
	sess.Activate(now)
	s.logTurn(sess, domain.RoleUser, EventReply, text)

	limit := time.Duration(sc.Persona(sess.PersonaIndex).Window.Minutes()) * time.Minute
	if sess.Elapsed(now) >= limit {
		sess.Append(domain.RoleUser, text)
		sess.Append(domain.RoleAssistant, timeoutNotice)
		sess.State = domain.StateTimedOut
		s.logTurn(sess, domain.RoleAssistant, EventTimeout, timeoutNotice)
		slog.Info("session timed out", "session_id", sess.ID, "elapsed", sess.Elapsed(now), "limit", limit)
		return s.turn(sess, sc, EventTimeout, domain.Message{Role: domain.RoleAssistant, Content: timeoutNotice}), nil
	}

	sess.Append(domain.RoleUser, text)

	if idx, switched := DetectPersonaSwitch(text, sc.Personas, sess.PersonaIndex); switched {
		sess.PersonaIndex = idx
		sess.SetSystem(BuildSystemPrompt(sc, idx))
		notice := sc.Persona(idx).Name + " has joined the meeting."
		sess.Append(domain.RoleAssistant, notice)
		s.logTurn(sess, domain.RoleAssistant, EventPersonaSwitch, notice)
		slog.Info("persona switched", "session_id", sess.ID, "persona", sc.Persona(idx).Name)
		return s.turn(sess, sc, EventPersonaSwitch, domain.Message{Role: domain.RoleAssistant, Content: notice}), nil
	}

	if scoring.ContainsClosingPhrase(text) {
		score := s.policy.Score(ctx, sess.Transcript)
		sess.Score = &score
		sess.State = domain.StateClosed
		sess.Append(domain.RoleAssistant, closedReply)
		s.logTurn(sess, domain.RoleAssistant, EventClosed, closedReply)
		slog.Info("session closed on affirmation", "session_id", sess.ID, "total", score.Total)
		result := s.turn(sess, sc, EventClosed, domain.Message{Role: domain.RoleAssistant, Content: closedReply})
		result.Score = &score
		return result, nil
	}

	// Rebuild slot zero for the active persona. Stored system text is
	// never trusted between turns.
	sess.SetSystem(BuildSystemPrompt(sc, sess.PersonaIndex))

	reply, err := s.client.Complete(ctx, llm.ChatRequest{
		Model:       s.cfg.Model,
		Messages:    sess.Transcript,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		sess.Append(domain.RoleAssistant, fallbackReply)
		s.logTurn(sess, domain.RoleAssistant, EventFallback, fallbackReply)
		slog.Warn("completion failed, using fallback reply", "session_id", sess.ID, "error", err)
		return s.turn(sess, sc, EventFallback, domain.Message{Role: domain.RoleAssistant, Content: fallbackReply}), nil
	}

	sess.Append(domain.RoleAssistant, reply)
	s.logTurn(sess, domain.RoleAssistant, EventReply, reply)
	return s.turn(sess, sc, EventReply, domain.Message{Role: domain.RoleAssistant, Content: reply}), nil
}

// End computes the final score (once) and records it on the shared
// leaderboard under the given name. An empty name skips the board. A
// leaderboard write failure is reported without touching the score.
func (s *Service) End(ctx context.Context, traineeID, tab, name string) (*EndResult, error) {
	h := s.sessions.acquire(sessionKey(traineeID, tab))
	h.mu.Lock()
	defer h.mu.Unlock()

	sess := h.sess
	if sess == nil || sess.State == domain.StateNotStarted {
		return nil, ErrNoSession
	}

	if sess.Score == nil {
		score := s.policy.Score(ctx, sess.Transcript)
		sess.Score = &score
	}
	sess.State = domain.StateClosed

	result := &EndResult{Score: sess.Score}
	if name != "" {
		err := s.repo.SaveScore(ctx, &domain.Entry{
			SessionID: sess.ID,
			Name:      name,
			Score:     sess.Score.Total,
			CreatedAt: s.now(),
		})
		if err != nil {
			result.SaveError = "your score could not be saved to the leaderboard"
			slog.Error("leaderboard write failed", "session_id", sess.ID, "error", err)
		} else {
			result.Saved = true
		}
	}

	slog.Info("session ended", "session_id", sess.ID, "total", sess.Score.Total, "saved", result.Saved)
	return result, nil
}

// Session returns a snapshot of the trainee's current session, or nil.
func (s *Service) Session(traineeID, tab string) *domain.Session {
	return s.sessions.Snapshot(traineeID, tab)
}

// Scenarios exposes the scenario bank for the API layer.
func (s *Service) Scenarios() *scenario.Store {
	return s.scenarios
}

func (s *Service) freshSession(traineeID, scenarioID string) *domain.Session {
	sc := s.scenarios.ByID(scenarioID)
	sess := &domain.Session{
		ID:         uuid.NewString(),
		TraineeID:  traineeID,
		ScenarioID: sc.ID,
		State:      domain.StateNotStarted,
	}
	sess.SetSystem(BuildSystemPrompt(sc, 0))
	return sess
}

func (s *Service) turn(sess *domain.Session, sc domain.Scenario, event string, reply domain.Message) *TurnResult {
	return &TurnResult{
		Event:   event,
		Reply:   reply,
		State:   sess.State,
		Persona: sc.Persona(sess.PersonaIndex).Name,
	}
}

func (s *Service) logTurn(sess *domain.Session, role, event, content string) {
	s.log.Log(TurnEvent{
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		TraineeID: sess.TraineeID,
		SessionID: sess.ID,
		Role:      role,
		Event:     event,
		Content:   content,
	})
}

func snapshot(sess *domain.Session) *domain.Session {
	copied := *sess
	copied.Transcript = append([]domain.Message(nil), sess.Transcript...)
	return &copied
}

// String renders the config for startup logs without leaking secrets.
func (c Config) String() string {
	return fmt.Sprintf("model=%s temperature=%.2f", c.Model, c.Temperature)
}
