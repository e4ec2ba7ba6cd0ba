package domain

// TimeWindow buckets a persona's availability for the simulated meeting.
type TimeWindow string

const (
	WindowBrief    TimeWindow = "brief"
	WindowStandard TimeWindow = "standard"
	WindowExtended TimeWindow = "extended"
)

// Minutes maps an availability bucket to the maximum session duration.
// Unknown or empty buckets fall back to the standard 10 minutes.
func (w TimeWindow) Minutes() int {
	switch w {
	case WindowBrief:
		return 5
	case WindowStandard:
		return 10
	case WindowExtended:
		return 20
	default:
		return 10
	}
}

// Persona is a simulated buyer role within a scenario.
// HiddenPains and HiddenObjections must not be volunteered by the
// role-play agent unless the trainee's questions draw them out.
type Persona struct {
	Name             string     `yaml:"name" json:"name"`
	Role             string     `yaml:"role" json:"role"`
	Background       string     `yaml:"background" json:"background"`
	Familiarity      string     `yaml:"familiarity" json:"familiarity"`
	PainPoints       []string   `yaml:"pain_points" json:"pain_points"`
	Objections       []string   `yaml:"objections" json:"objections"`
	HiddenPains      []string   `yaml:"hidden_pains" json:"-"`
	HiddenObjections []string   `yaml:"hidden_objections" json:"-"`
	Window           TimeWindow `yaml:"window" json:"window"`
}

// Scenario bundles a prospect company with one or more stakeholder personas.
// Immutable once loaded.
type Scenario struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Company  string    `yaml:"company" json:"company"`
	Category string    `yaml:"category" json:"category"`
	Offer    string    `yaml:"offer" json:"offer"`
	Personas []Persona `yaml:"personas" json:"personas"`
}

// Persona returns the persona at index i, falling back to the first
// persona when the index is stale or out of range.
func (s *Scenario) Persona(i int) Persona {
	if i < 0 || i >= len(s.Personas) {
		return s.Personas[0]
	}
	return s.Personas[i]
}
