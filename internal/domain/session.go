package domain

import (
	"time"
)

// SessionState tracks the role-play lifecycle.
// NotStarted -> Active -> TimedOut | Closed. Closed is terminal.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateActive     SessionState = "active"
	StateTimedOut   SessionState = "timed_out"
	StateClosed     SessionState = "closed"
)

// Session holds the mutable per-trainee role-play state.
// Transcript slot zero is always the system instruction for the active
// persona; it is rebuilt before every completion call and must never be
// trusted as current between turns.
type Session struct {
	ID           string       `json:"id"`
	TraineeID    string       `json:"trainee_id"`
	ScenarioID   string       `json:"scenario_id"`
	PersonaIndex int          `json:"persona_index"`
	Transcript   []Message    `json:"transcript"`
	State        SessionState `json:"state"`
	StartedAt    time.Time    `json:"started_at,omitempty"`
	Score        *ScoreResult `json:"score,omitempty"`
}

// Append adds a message to the transcript.
func (s *Session) Append(role, content string) {
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content})
}

// SetSystem replaces the system instruction in transcript slot zero,
// inserting it when the transcript is empty.
func (s *Session) SetSystem(content string) {
	if len(s.Transcript) == 0 {
		s.Transcript = []Message{{Role: RoleSystem, Content: content}}
		return
	}
	s.Transcript[0] = Message{Role: RoleSystem, Content: content}
}

// TraineeMessages returns the trainee-authored messages in order.
func (s *Session) TraineeMessages() []Message {
	var out []Message
	for _, m := range s.Transcript {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// Elapsed returns the wall-clock time since the session became active.
// Zero before activation.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Activate marks the session active and starts the meeting clock.
// No-op once the session has left NotStarted.
func (s *Session) Activate(now time.Time) {
	if s.State != StateNotStarted {
		return
	}
	s.State = StateActive
	s.StartedAt = now
}
