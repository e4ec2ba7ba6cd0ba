package domain

import "time"

// Entry is one leaderboard row. Append-only and shared across all
// trainees; SessionID keeps inserts idempotent per session.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
