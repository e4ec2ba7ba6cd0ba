// Package scenario loads and serves the prospect scenario bank.
package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/arcpointlabs/salescoach/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBank []byte

type bankFile struct {
	Scenarios []domain.Scenario `yaml:"scenarios"`
}

// Store holds the scenario bank, read-only after load.
type Store struct {
	scenarios []domain.Scenario
	byID      map[string]int
}

// Load returns a store backed by the embedded default bank.
func Load() (*Store, error) {
	return parse(defaultBank)
}

// LoadFile returns a store backed by a YAML bank file on disk.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario bank: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Store, error) {
	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse scenario bank: %w", err)
	}
	if len(bank.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario bank is empty")
	}

	byID := make(map[string]int, len(bank.Scenarios))
	for i, sc := range bank.Scenarios {
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario %d has no id", i)
		}
		if len(sc.Personas) == 0 {
			return nil, fmt.Errorf("scenario %q has no personas", sc.ID)
		}
		if _, dup := byID[sc.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		byID[sc.ID] = i
	}

	return &Store{scenarios: bank.Scenarios, byID: byID}, nil
}

// List returns all scenarios in bank order.
func (s *Store) List() []domain.Scenario {
	out := make([]domain.Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// ByID returns the scenario with the given id, falling back to the first
// scenario when the id is unknown or stale.
func (s *Store) ByID(id string) domain.Scenario {
	if i, ok := s.byID[id]; ok {
		return s.scenarios[i]
	}
	return s.scenarios[0]
}

// Len returns the number of loaded scenarios.
func (s *Store) Len() int {
	return len(s.scenarios)
}
