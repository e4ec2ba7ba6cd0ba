package coach

import (
	"testing"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

func twoStakeholders() []domain.Persona {
	return []domain.Persona{
		{Name: "HR Director Hank"},
		{Name: "Plant Manager Priya"},
	}
}

func TestDetectPersonaSwitch(t *testing.T) {
	tests := []struct {
		name    string
		message string
		active  int
		want    int
		wantOK  bool
	}{
		{"last name token", "Could we bring Priya into the call?", 0, 1, true},
		{"full name", "I'd like plant manager priya's take on this.", 0, 1, true},
		{"case insensitive", "Is PRIYA available?", 0, 1, true},
		{"switch back", "Let me check with Hank on that.", 1, 0, true},
		{"active persona mention ignored", "Hank, what do you think?", 0, 0, false},
		{"no mention", "What are your biggest challenges?", 0, 0, false},
		{"substring inside a longer name still switches", "Ask Supriya in accounting.", 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectPersonaSwitch(tt.message, twoStakeholders(), tt.active)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DetectPersonaSwitch(%q, active=%d) = (%d, %v), want (%d, %v)",
					tt.message, tt.active, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDetectPersonaSwitchSinglePersona(t *testing.T) {
	personas := []domain.Persona{{Name: "Logistics Manager Lisa"}}
	if got, ok := DetectPersonaSwitch("Lisa, can we talk about Lisa's fleet?", personas, 0); ok || got != 0 {
		t.Errorf("single-persona scenario switched: (%d, %v)", got, ok)
	}
}
