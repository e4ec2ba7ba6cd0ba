package coach

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// TurnEvent is one line of the per-session transcript log.
type TurnEvent struct {
	Timestamp string `json:"ts"`
	TraineeID string `json:"trainee_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Event     string `json:"event"`
	Content   string `json:"content"`
}

// TranscriptLogger records role-play turns for later review. Purely
// observational: logging failures never affect the session.
type TranscriptLogger interface {
	Log(event TurnEvent)
	Close() error
}

type noopTranscriptLogger struct{}

func (noopTranscriptLogger) Log(TurnEvent) {}

func (noopTranscriptLogger) Close() error { return nil }

// TranscriptLogConfig controls NDJSON transcript logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// fileTranscriptLogger appends one NDJSON line per turn to
// <dir>/<trainee>/<session>.ndjson via a bounded async queue.
type fileTranscriptLogger struct {
	dir    string
	queue  chan TurnEvent
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

// NewTranscriptLogger creates a transcript logger. Returns a no-op
// logger when disabled.
func NewTranscriptLogger(cfg TranscriptLogConfig, logger *slog.Logger) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscriptLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript log dir: %w", err)
	}

	l := &fileTranscriptLogger{
		dir:    cfg.Dir,
		queue:  make(chan TurnEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

// Log enqueues an event, dropping it when the queue is full.
func (l *fileTranscriptLogger) Log(event TurnEvent) {
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("transcript log queue full, dropping event", "session_id", event.SessionID)
	}
}

// Close drains the queue and stops the writer goroutine.
func (l *fileTranscriptLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
	})
	return nil
}

func (l *fileTranscriptLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("transcript log write failed", "session_id", event.SessionID, "error", err)
		}
	}
}

func (l *fileTranscriptLogger) write(event TurnEvent) error {
	dir := filepath.Join(l.dir, event.TraineeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create trainee dir: %w", err)
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	path := filepath.Join(dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write transcript line: %w", err)
	}
	return nil
}
