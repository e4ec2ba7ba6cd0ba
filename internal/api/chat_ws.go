package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arcpointlabs/salescoach/internal/coach"
	"github.com/arcpointlabs/salescoach/internal/identity"
	"github.com/coder/websocket"
)

// ChatSocketHandler handles WebSocket-based role-play chat. It speaks the
// same turn protocol as the HTTP endpoints for frontends that prefer a
// persistent connection.
type ChatSocketHandler struct {
	svc           *coach.Service
	limiter       *RateLimiter
	allowedOrigin string
	isDev         bool
}

// NewChatSocketHandler creates a new WebSocket chat handler. The limiter
// is shared with the HTTP message endpoint so switching transports does
// not reset a trainee's quota.
func NewChatSocketHandler(svc *coach.Service, limiter *RateLimiter, allowedOrigin string, isDev bool) *ChatSocketHandler {
	return &ChatSocketHandler{
		svc:           svc,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsMessage represents the WebSocket message structure.
type wsMessage struct {
	Type       string `json:"type"` // start, message, end, ping
	ScenarioID string `json:"scenario_id,omitempty"`
	Content    string `json:"content,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *ChatSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if traineeID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "trainee_id", traineeID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "trainee_id", traineeID)
		}
	}()

	slog.Info("Chat socket connected", "trainee_id", traineeID, "session_id", sessionID, "ip", r.RemoteAddr)
	h.chatLoop(r.Context(), ws, traineeID, sessionID)
	slog.Info("Chat socket closed", "trainee_id", traineeID, "session_id", sessionID)
}

func (h *ChatSocketHandler) chatLoop(ctx context.Context, ws *websocket.Conn, traineeID, sessionID string) {
	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed by client", "trainee_id", traineeID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "trainee_id", traineeID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.writeJSON(ctx, ws, map[string]string{"type": "error", "error": "invalid message"})
			continue
		}

		switch msg.Type {
		case "start":
			sess := h.svc.Start(traineeID, sessionID, msg.ScenarioID)
			h.writeJSON(ctx, ws, map[string]interface{}{
				"type":        "started",
				"session_id":  sess.ID,
				"scenario_id": sess.ScenarioID,
			})

		case "message":
			if !h.limiter.Allow(traineeID) {
				h.writeJSON(ctx, ws, map[string]string{"type": "error", "error": "rate limit exceeded"})
				continue
			}
			result, err := h.svc.HandleMessage(ctx, traineeID, sessionID, msg.Content)
			if err != nil {
				h.writeJSON(ctx, ws, map[string]string{"type": "error", "error": turnErrorMessage(err)})
				continue
			}
			h.writeJSON(ctx, ws, map[string]interface{}{"type": "turn", "turn": result})

		case "end":
			result, err := h.svc.End(ctx, traineeID, sessionID, msg.Name)
			if err != nil {
				h.writeJSON(ctx, ws, map[string]string{"type": "error", "error": turnErrorMessage(err)})
				continue
			}
			h.writeJSON(ctx, ws, map[string]interface{}{"type": "ended", "result": result})

		case "ping":
			h.writeJSON(ctx, ws, map[string]string{"type": "pong"})

		default:
			h.writeJSON(ctx, ws, map[string]string{"type": "error", "error": "unknown message type"})
		}
	}
}

func turnErrorMessage(err error) string {
	switch {
	case errors.Is(err, coach.ErrEmptyMessage):
		return "message is required"
	case errors.Is(err, coach.ErrSessionClosed):
		return "session is closed"
	case errors.Is(err, coach.ErrNoSession):
		return "no active session"
	default:
		return "failed to process message"
	}
}

func (h *ChatSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to marshal websocket message", "error", err)
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
	}
}

func (h *ChatSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
