package scoring

import (
	"context"
	"fmt"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// LegacyPrincipleCount is the older message-count grading: three points
// per trainee message (up to 30 messages), plus a 30-point bonus when a
// closing affirmation appears in the last three transcript messages.
// Retained as a named alternative to the rubric policy.
type LegacyPrincipleCount struct{}

// Name implements Policy.
func (LegacyPrincipleCount) Name() string { return "legacy_principle_count" }

// Score implements Policy. The close bonus scans the last three messages
// of any role, so a prospect reply agreeing on a minor point ("yes, that
// is a real concern") counts as a close. Known heuristic weakness, kept
// pending rubric sign-off.
func (LegacyPrincipleCount) Score(_ context.Context, transcript []domain.Message) domain.ScoreResult {
	traineeCount := 0
	for _, m := range transcript {
		if m.Role == domain.RoleUser {
			traineeCount++
		}
	}
	if traineeCount > 30 {
		traineeCount = 30
	}
	principle := traineeCount * 3

	bonus := 0
	start := len(transcript) - 3
	if start < 0 {
		start = 0
	}
	for _, m := range transcript[start:] {
		if ContainsClosingPhrase(m.Content) {
			bonus = 30
			break
		}
	}

	total := principle + bonus
	if total > 100 {
		total = 100
	}

	return domain.ScoreResult{
		Total:  total,
		Policy: LegacyPrincipleCount{}.Name(),
		Feedback: []string{
			fmt.Sprintf("Principles practiced: %d points from %d messages.", principle, traineeCount),
			fmt.Sprintf("Close bonus: %d points.", bonus),
		},
	}
}
