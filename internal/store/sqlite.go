package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arcpointlabs/salescoach/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes inserts to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed leaderboard repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for concurrent readers during inserts.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS leaderboard (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		score INTEGER NOT NULL CHECK (score >= 0 AND score <= 100),
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leaderboard_rank ON leaderboard(score DESC, created_at ASC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveScore inserts one leaderboard entry, retrying on SQLite
// concurrency errors. A duplicate session id is a no-op.
func (s *SQLiteStore) SaveScore(ctx context.Context, entry *domain.Entry) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.saveScoreOnce(ctx, entry)
		if err == nil {
			return nil
		}

		if isSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("SaveScore hit SQLITE_BUSY, retrying",
				"session_id", entry.SessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("save score for session %s: %w", entry.SessionID, err)
	}
	return nil
}

func (s *SQLiteStore) saveScoreOnce(ctx context.Context, entry *domain.Entry) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	query := `
	INSERT INTO leaderboard (session_id, name, score, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.SessionID, entry.Name, entry.Score, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

// TopScores lists the top n entries: score descending, earliest insert
// first on ties.
func (s *SQLiteStore) TopScores(ctx context.Context, n int) ([]domain.Entry, error) {
	if n <= 0 {
		n = 10
	}

	query := `
	SELECT id, session_id, name, score, created_at
	FROM leaderboard
	ORDER BY score DESC, created_at ASC, id ASC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close leaderboard rows", "error", closeErr)
		}
	}()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Name, &entry.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
