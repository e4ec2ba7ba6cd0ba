package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedBank(t *testing.T) {
	store, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Len() < 5 {
		t.Errorf("expected at least 5 scenarios, got %d", store.Len())
	}

	multi := false
	for _, sc := range store.List() {
		if len(sc.Personas) > 1 {
			multi = true
		}
		for _, p := range sc.Personas {
			if p.Name == "" || p.Background == "" {
				t.Errorf("scenario %q has incomplete persona %+v", sc.ID, p)
			}
		}
	}
	if !multi {
		t.Error("bank has no multi-stakeholder scenario")
	}
}

func TestByIDFallsBackToFirst(t *testing.T) {
	store, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	first := store.List()[0]
	if got := store.ByID("no-such-scenario"); got.ID != first.ID {
		t.Errorf("ByID(unknown) = %q, want first scenario %q", got.ID, first.ID)
	}
	if got := store.ByID(first.ID); got.ID != first.ID {
		t.Errorf("ByID(%q) = %q", first.ID, got.ID)
	}
}

func TestLoadFileRejectsBadBanks(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "scenarios: []"},
		{"missing-id", "scenarios:\n  - title: t\n    personas:\n      - name: P\n"},
		{"no-personas", "scenarios:\n  - id: x\n    title: t\n    personas: []\n"},
		{"duplicate-id", "scenarios:\n  - id: x\n    personas:\n      - name: A\n  - id: x\n    personas:\n      - name: B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Errorf("LoadFile accepted invalid bank %q", tt.name)
			}
		})
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile succeeded on missing file")
	}
}
