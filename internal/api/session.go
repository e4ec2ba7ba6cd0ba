package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/coach"
	"github.com/arcpointlabs/salescoach/internal/domain"
	"github.com/arcpointlabs/salescoach/internal/identity"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the coach API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", h.ListScenarios)
		r.Post("/session", h.StartSession)
		r.Get("/session", h.GetSession)
		r.Post("/session/message", h.HandleMessage)
		r.Post("/session/end", h.EndSession)
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Post("/speech", h.Speak)
	})
}

type startSessionRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type endSessionRequest struct {
	Name string `json:"name"`
}

// ListScenarios handles GET /api/scenarios. Hidden persona fields are
// stripped by the domain JSON tags so the bank is safe to show trainees.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": h.svc.Scenarios().List(),
	})
}

// StartSession handles POST /api/session. Any prior session for this
// trainee and tab is discarded.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	if traineeID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req startSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess := h.svc.Start(traineeID, identity.SessionIDFromContext(r.Context()), req.ScenarioID)
	JSON(w, http.StatusCreated, map[string]interface{}{
		"session_id":  sess.ID,
		"scenario_id": sess.ScenarioID,
		"state":       sess.State,
	})
}

// GetSession handles GET /api/session. The transcript is returned
// without the system instruction.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	if traineeID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess := h.svc.Session(traineeID, identity.SessionIDFromContext(r.Context()))
	if sess == nil {
		Error(w, http.StatusNotFound, "no session")
		return
	}

	transcript := sess.Transcript
	if len(transcript) > 0 && transcript[0].Role == domain.RoleSystem {
		transcript = transcript[1:]
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id":  sess.ID,
		"scenario_id": sess.ScenarioID,
		"state":       sess.State,
		"transcript":  transcript,
	})
}

// HandleMessage handles POST /api/session/message, one role-play turn.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	if traineeID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.limiter.Allow(traineeID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.HandleMessage(r.Context(), traineeID, identity.SessionIDFromContext(r.Context()), strings.TrimSpace(req.Message))
	if err != nil {
		switch {
		case errors.Is(err, coach.ErrEmptyMessage):
			Error(w, http.StatusBadRequest, "message is required")
		case errors.Is(err, coach.ErrSessionClosed):
			Error(w, http.StatusConflict, "session is closed")
		default:
			slog.Error("message turn failed", "trainee_id", traineeID, "error", err)
			Error(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	JSON(w, http.StatusOK, result)
}

// EndSession handles POST /api/session/end. The score is computed once;
// a non-empty name also records it on the leaderboard.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	if traineeID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req endSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.End(r.Context(), traineeID, identity.SessionIDFromContext(r.Context()), strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, coach.ErrNoSession) {
			Error(w, http.StatusNotFound, "no active session")
			return
		}
		slog.Error("end session failed", "trainee_id", traineeID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	JSON(w, http.StatusOK, result)
}
