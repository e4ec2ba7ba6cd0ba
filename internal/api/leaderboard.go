package api

import (
	"log/slog"
	"net/http"
	"strconv"
)

const maxLeaderboardLimit = 100

type leaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GetLeaderboard handles GET /api/leaderboard?limit=N. Entries are
// ranked by score descending, earliest submission first on ties.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := h.repo.TopScores(r.Context(), limit)
	if err != nil {
		slog.Error("leaderboard query failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	ranked := make([]leaderboardEntry, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, leaderboardEntry{Rank: i + 1, Name: e.Name, Score: e.Score})
	}
	JSON(w, http.StatusOK, map[string][]leaderboardEntry{"entries": ranked})
}
