package domain

// PillarScore is one rubric category's result.
type PillarScore struct {
	Pillar string  `json:"pillar"`
	Hits   int     `json:"hits"`
	Score  float64 `json:"score"`
}

// ScoreResult grades a completed session. Created once per session when
// the trainee ends it; immutable thereafter.
type ScoreResult struct {
	Total    int           `json:"total"`
	Pillars  []PillarScore `json:"pillars,omitempty"`
	Feedback []string      `json:"feedback"`
	Policy   string        `json:"policy"`
}
