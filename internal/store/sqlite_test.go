package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestTopScoresOrdering(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	entries := []domain.Entry{
		{SessionID: "s1", Name: "Ana", Score: 60, CreatedAt: base},
		{SessionID: "s2", Name: "Ben", Score: 80, CreatedAt: base.Add(time.Minute)},
		{SessionID: "s3", Name: "Cal", Score: 80, CreatedAt: base.Add(2 * time.Minute)},
		{SessionID: "s4", Name: "Dee", Score: 40, CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range entries {
		if err := repo.SaveScore(ctx, &entries[i]); err != nil {
			t.Fatalf("SaveScore(%s) failed: %v", entries[i].SessionID, err)
		}
	}

	top, err := repo.TopScores(ctx, 3)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d entries, want 3", len(top))
	}
	// Ben and Cal tie at 80; Ben inserted earlier and ranks first.
	want := []string{"Ben", "Cal", "Ana"}
	for i, name := range want {
		if top[i].Name != name {
			t.Errorf("rank %d = %q, want %q", i+1, top[i].Name, name)
		}
	}
}

func TestSaveScoreIdempotentPerSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	entry := &domain.Entry{SessionID: "same-session", Name: "Ana", Score: 55}
	if err := repo.SaveScore(ctx, entry); err != nil {
		t.Fatalf("first SaveScore failed: %v", err)
	}
	dup := &domain.Entry{SessionID: "same-session", Name: "Ana", Score: 99}
	if err := repo.SaveScore(ctx, dup); err != nil {
		t.Fatalf("duplicate SaveScore failed: %v", err)
	}

	top, err := repo.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("got %d entries, want 1", len(top))
	}
	if top[0].Score != 55 {
		t.Errorf("score = %d, want original 55", top[0].Score)
	}
}

func TestConcurrentSaves(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := &domain.Entry{
				SessionID: fmt.Sprintf("session-%d", i),
				Name:      fmt.Sprintf("trainee-%d", i),
				Score:     i * 10,
			}
			if err := repo.SaveScore(ctx, entry); err != nil {
				t.Errorf("concurrent SaveScore failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	top, err := repo.TopScores(ctx, 20)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(top) != 10 {
		t.Errorf("got %d entries, want all 10", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Errorf("entries out of order at %d: %d > %d", i, top[i].Score, top[i-1].Score)
		}
	}
}

func TestTopScoresDefaultLimit(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		entry := &domain.Entry{SessionID: fmt.Sprintf("s%d", i), Name: "x", Score: i}
		if err := repo.SaveScore(ctx, entry); err != nil {
			t.Fatalf("SaveScore failed: %v", err)
		}
	}

	top, err := repo.TopScores(ctx, 0)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(top) != 10 {
		t.Errorf("default limit returned %d entries, want 10", len(top))
	}
}
