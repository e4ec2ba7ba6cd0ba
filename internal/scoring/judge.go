package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
	"github.com/arcpointlabs/salescoach/internal/llm"
)

// neutralScore is assigned when the judge output cannot be used.
const neutralScore = 50

const judgeInstruction = "You are an objective sales coach. Score the trainee's " +
	"performance across the whole conversation on rapport, discovery questions, " +
	"empathy, objection handling, and closing. Respond with strict JSON only: " +
	`{"score": <integer 0-100>, "feedback": "<2-3 sentences>"}`

// Judge asks the chat-completion collaborator to grade the transcript.
// One temperature-0 call per scoring; unusable output recovers locally
// with a neutral score.
type Judge struct {
	client llm.Client
	model  string
}

// NewJudge creates an LM-scored policy using the given client and model.
func NewJudge(client llm.Client, model string) *Judge {
	return &Judge{client: client, model: model}
}

// Name implements Policy.
func (j *Judge) Name() string { return "llm_judge" }

type judgeVerdict struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Score implements Policy.
func (j *Judge) Score(ctx context.Context, transcript []domain.Message) domain.ScoreResult {
	body := transcript
	if len(body) > 0 && body[0].Role == domain.RoleSystem {
		body = body[1:]
	}
	messages := []domain.Message{{Role: domain.RoleSystem, Content: judgeInstruction}}
	messages = append(messages, body...)

	raw, err := j.client.Complete(ctx, llm.ChatRequest{
		Model:       j.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		slog.Warn("judge call failed, assigning neutral score", "error", err)
		return neutralResult()
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		slog.Warn("judge output unparsable, assigning neutral score", "error", err)
		return neutralResult()
	}
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 100 {
		verdict.Score = 100
	}

	feedback := []string{verdict.Feedback}
	if verdict.Feedback == "" {
		feedback = []string{fmt.Sprintf("Judged score: %d/100.", verdict.Score)}
	}
	return domain.ScoreResult{
		Total:    verdict.Score,
		Feedback: feedback,
		Policy:   (&Judge{}).Name(),
	}
}

func neutralResult() domain.ScoreResult {
	return domain.ScoreResult{
		Total:    neutralScore,
		Feedback: []string{"Could not evaluate the conversation. A neutral score was assigned."},
		Policy:   (&Judge{}).Name(),
	}
}

// stripFences removes a markdown code fence the model may wrap around
// its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
