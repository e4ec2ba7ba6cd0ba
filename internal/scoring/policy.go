// Package scoring grades a session transcript against a sales rubric.
package scoring

import (
	"context"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// Policy grades a transcript. Deterministic policies ignore the context;
// it exists for the LM-judged variant, which makes one external call.
type Policy interface {
	// Name identifies the policy in results and configuration.
	Name() string

	// Score evaluates the full transcript and returns the result.
	// Must not mutate the transcript.
	Score(ctx context.Context, transcript []domain.Message) domain.ScoreResult
}

// ClosingPhrases are the affirmations that signal a closed sale. Matched
// case-insensitively as substrings. The bare "yes" entry false-positives
// on incidental agreement; kept pending rubric sign-off.
var ClosingPhrases = []string{
	"move forward",
	"sign up",
	"get started",
	"ready to proceed",
	"let's move forward",
	"let's get started",
	"i'm excited to begin",
	"move forward with this partnership",
	"yes",
}

// ContainsClosingPhrase reports whether the text contains any closing
// affirmation.
func ContainsClosingPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range ClosingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
