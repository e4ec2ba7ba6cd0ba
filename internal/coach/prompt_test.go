package coach

import (
	"strings"
	"testing"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

func promptScenario() domain.Scenario {
	return domain.Scenario{
		ID:      "plant-union-talks",
		Company: "Keystone Fabrication",
		Personas: []domain.Persona{
			{
				Name:             "HR Director Hank",
				Role:             "HR Director",
				Background:       "Hank heads HR at a 500-employee plant.",
				Familiarity:      "medium",
				PainPoints:       []string{"Safety incidents affecting premiums"},
				Objections:       []string{"Randoms violate privacy"},
				HiddenPains:      []string{"Insurance carrier threatened a premium hike"},
				HiddenObjections: []string{"Testing slows production"},
				Window:           domain.WindowStandard,
			},
			{
				Name:   "Plant Manager Priya",
				Role:   "Plant Manager",
				Window: domain.WindowBrief,
			},
		},
	}
}

func TestBuildSystemPromptContents(t *testing.T) {
	prompt := BuildSystemPrompt(promptScenario(), 0)

	for _, want := range []string{
		"You are HR Director Hank, HR Director at Keystone Fabrication.",
		"Safety incidents affecting premiums",
		"Randoms violate privacy",
		"Insurance carrier threatened a premium hike",
		"Never volunteer these",
		"10 minutes",
		"Plant Manager Priya (Plant Manager)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPromptPerPersona(t *testing.T) {
	sc := promptScenario()
	hank := BuildSystemPrompt(sc, 0)
	priya := BuildSystemPrompt(sc, 1)

	if hank == priya {
		t.Fatal("personas rendered the same instruction")
	}
	if !strings.Contains(priya, "You are Plant Manager Priya") {
		t.Errorf("wrong identity:\n%s", priya)
	}
	if !strings.Contains(priya, "5 minutes") {
		t.Errorf("brief window not reflected:\n%s", priya)
	}
	// Hank's hidden concerns must not leak into Priya's instruction.
	if strings.Contains(priya, "premium hike") {
		t.Error("other persona's hidden pain leaked")
	}
}

func TestBuildSystemPromptStaleIndex(t *testing.T) {
	sc := promptScenario()
	if got := BuildSystemPrompt(sc, 7); !strings.Contains(got, "You are HR Director Hank") {
		t.Errorf("stale index did not fall back to the first persona:\n%s", got)
	}
}
