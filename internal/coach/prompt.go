package coach

import (
	"fmt"
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// BuildSystemPrompt renders the role-play instruction for the scenario's
// active persona. It always reflects the persona at idx (with the usual
// fallback to the first persona on a stale index) and must be rebuilt
// into transcript slot zero before every completion call.
func BuildSystemPrompt(sc domain.Scenario, idx int) string {
	p := sc.Persona(idx)

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s at %s. %s\n", p.Name, p.Role, sc.Company, strings.TrimSpace(p.Background))
	fmt.Fprintf(&b, "Your familiarity with the seller's offering is %s.\n", orUnknown(p.Familiarity))

	if len(p.PainPoints) > 0 {
		b.WriteString("Pains you are willing to discuss when asked:\n")
		for _, pain := range p.PainPoints {
			fmt.Fprintf(&b, "- %s\n", pain)
		}
	}
	if len(p.Objections) > 0 {
		b.WriteString("Objections you will raise:\n")
		for _, obj := range p.Objections {
			fmt.Fprintf(&b, "- %s\n", obj)
		}
	}
	if len(p.HiddenPains) > 0 || len(p.HiddenObjections) > 0 {
		b.WriteString("You also have private concerns: ")
		b.WriteString(strings.Join(append(append([]string{}, p.HiddenPains...), p.HiddenObjections...), "; "))
		b.WriteString(". Never volunteer these unless the trainee's questions draw them out.\n")
	}

	fmt.Fprintf(&b, "You have %d minutes for this meeting and will wrap up when time runs out.\n", p.Window.Minutes())

	if others := otherStakeholders(sc, idx); len(others) > 0 {
		fmt.Fprintf(&b, "Other stakeholders who might join the meeting: %s.\n", strings.Join(others, ", "))
	}

	b.WriteString("Respond as this prospect. Present pains and objections realistically, stay in character, " +
		"let the trainee lead with questions, and do not sell for them.")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func otherStakeholders(sc domain.Scenario, idx int) []string {
	if idx < 0 || idx >= len(sc.Personas) {
		idx = 0
	}
	var names []string
	for i, p := range sc.Personas {
		if i == idx {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Role))
	}
	return names
}
