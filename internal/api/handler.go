// Package api provides HTTP handlers for the sales coach API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/arcpointlabs/salescoach/internal/coach"
	"github.com/arcpointlabs/salescoach/internal/config"
	"github.com/arcpointlabs/salescoach/internal/speech"
	"github.com/arcpointlabs/salescoach/internal/store"
)

// maxRequestBodySize caps trainee request bodies. Role-play messages are
// short; anything near this limit is abuse.
const maxRequestBodySize = 64 << 10 // 64KB

// Handler provides common handler utilities and shared dependencies.
type Handler struct {
	svc     *coach.Service
	repo    store.Repository
	tts     speech.Synthesizer
	limiter *RateLimiter
	cfg     *config.Config
}

// NewHandler creates a new Handler with common dependencies. A nil
// synthesizer disables the speech endpoint.
func NewHandler(svc *coach.Service, repo store.Repository, tts speech.Synthesizer, cfg *config.Config) *Handler {
	return &Handler{
		svc:     svc,
		repo:    repo,
		tts:     tts,
		limiter: NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration),
		cfg:     cfg,
	}
}

// Limiter exposes the shared rate limiter so the WebSocket chat handler
// counts against the same per-trainee quota.
func (h *Handler) Limiter() *RateLimiter {
	return h.limiter
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
