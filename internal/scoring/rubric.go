package scoring

import (
	"context"
	"math"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// maxHits caps counted trigger occurrences per pillar.
const maxHits = 3

// feedbackThreshold is 60% of a pillar's 20-point range.
const feedbackThreshold = 12.0

type pillar struct {
	name     string
	triggers []string
	praise   string
	urge     string
}

// Pillars are reported in this fixed order.
var pillars = []pillar{
	{
		name: "Rapport",
		triggers: []string{
			"thank you", "thanks for", "appreciate", "how are you",
			"great to meet", "good to meet", "hope you", "congratulations",
		},
		praise: "Strong rapport. You connected with the prospect before pitching.",
		urge:   "Build more rapport. Greet, thank, and acknowledge the prospect early.",
	},
	{
		name: "Pain Discovery",
		triggers: []string{
			"challenge", "concern", "pain point", "struggl", "frustrat",
			"biggest obstacle", "what happens if", "how do you handle",
			"keeping you up",
		},
		praise: "Good discovery. You dug into the prospect's real problems.",
		urge:   "Ask more discovery questions about challenges, concerns, and costs of inaction.",
	},
	{
		name: "Up-Front Contract",
		triggers: []string{
			"agenda", "is it fair", "fair to both", "at the end of this call",
			"before we wrap", "how much time do", "comfortable saying no",
			"next steps before",
		},
		praise: "Clear up-front contract. Time, agenda, and outcomes were agreed.",
		urge:   "Set an up-front contract. Agree on time, agenda, and possible outcomes.",
	},
	{
		name: "Teach and Tailor",
		triggers: []string{
			"we've seen", "our clients", "companies like yours",
			"in your industry", "typically", "for example", "what we do is",
			"did you know",
		},
		praise: "Nice teaching. You tailored insight to the prospect's world.",
		urge:   "Teach more. Share tailored examples from similar companies.",
	},
	{
		name: "Close",
		triggers: []string{
			"move forward", "shall we", "sign up", "get started", "next step",
			"ready to proceed", "send over the agreement", "proposal",
		},
		praise: "Confident close. You asked for the business.",
		urge:   "Work on closing. Propose a concrete next step and ask for commitment.",
	},
}

// RubricPillar is the canonical scoring policy: five pillars, each worth
// up to 20 points, graded by trigger-phrase matches in trainee messages.
type RubricPillar struct{}

// Name implements Policy.
func (RubricPillar) Name() string { return "rubric_pillar" }

// Score counts, per pillar, the distinct trigger phrases matched in each
// trainee message, summed across messages and capped at 3. Sub-score is
// capped hits * 20/3; the total is the floored sum. Pure and replayable:
// the same transcript always yields the same result.
func (RubricPillar) Score(_ context.Context, transcript []domain.Message) domain.ScoreResult {
	result := domain.ScoreResult{Policy: RubricPillar{}.Name()}

	var total float64
	for _, p := range pillars {
		hits := 0
		for _, m := range transcript {
			if m.Role != domain.RoleUser {
				continue
			}
			lower := strings.ToLower(m.Content)
			for _, trigger := range p.triggers {
				if strings.Contains(lower, trigger) {
					hits++
				}
			}
		}

		capped := hits
		if capped > maxHits {
			capped = maxHits
		}
		sub := float64(capped*20) / float64(maxHits)
		total += sub

		result.Pillars = append(result.Pillars, domain.PillarScore{
			Pillar: p.name,
			Hits:   capped,
			Score:  sub,
		})
		if sub >= feedbackThreshold {
			result.Feedback = append(result.Feedback, p.praise)
		} else {
			result.Feedback = append(result.Feedback, p.urge)
		}
	}

	result.Total = int(math.Floor(total))
	if result.Total > 100 {
		result.Total = 100
	}
	return result
}
