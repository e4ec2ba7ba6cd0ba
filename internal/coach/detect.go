package coach

import (
	"strings"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// DetectPersonaSwitch reports whether the trainee's message names another
// known persona in the scenario, returning that persona's index. Matching
// is a case-insensitive substring check on the persona's full name or its
// final name token ("Plant Manager Priya" matches on "priya").
//
// This is a deliberate heuristic: any mention of a stakeholder's name
// switches to them, even mid-sentence. Isolated here so a stricter
// matcher can replace it.
func DetectPersonaSwitch(message string, personas []domain.Persona, active int) (int, bool) {
	lower := strings.ToLower(message)
	for i, p := range personas {
		if i == active || p.Name == "" {
			continue
		}
		full := strings.ToLower(p.Name)
		if strings.Contains(lower, full) {
			return i, true
		}
		tokens := strings.Fields(full)
		last := tokens[len(tokens)-1]
		if len(last) >= 3 && strings.Contains(lower, last) {
			return i, true
		}
	}
	return active, false
}
