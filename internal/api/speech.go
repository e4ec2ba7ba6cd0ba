package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/identity"
)

type speakRequest struct {
	Text string `json:"text"`
}

// Speak handles POST /api/speech, rendering prospect replies as audio.
// Voice is cosmetic: failures return an error without touching session
// state, and the frontend falls back to text.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	traineeID := identity.TraineeIDFromContext(r.Context())
	if traineeID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.tts == nil {
		Error(w, http.StatusNotImplemented, "speech is not configured")
		return
	}

	if !h.limiter.Allow(traineeID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req speakRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), req.Text)
	if err != nil {
		slog.Warn("speech synthesis failed", "trainee_id", traineeID, "error", err)
		Error(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		slog.Debug("failed to write audio response", "error", err)
	}
}
