package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jrb00013/aamati/mood"
)

// Preset is a saved emotional and groove profile pair under a user-chosen
// name
type Preset struct {
	Name      string                `json:"name"`
	Emotional mood.EmotionalProfile `json:"emotional"`
	Groove    mood.GrooveProfile    `json:"groove"`
}

// PresetFromMood captures a mood's built-in profiles as a named preset
func PresetFromMood(name string, label mood.Label) Preset {
	return Preset{
		Name:      name,
		Emotional: mood.EmotionalProfileFor(label),
		Groove:    mood.GrooveProfileFor(label),
	}
}

// PresetStore persists presets as individual JSON files in one directory
type PresetStore struct {
	dir string
}

// NewPresetStore creates a store rooted at dir, creating it if needed
func NewPresetStore(dir string) (*PresetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("preset dir: %w", err)
	}
	return &PresetStore{dir: dir}, nil
}

// Save writes a preset, overwriting any existing preset of the same name
func (s *PresetStore) Save(p Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset %s: %w", p.Name, err)
	}
	path := s.pathFor(p.Name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset %s: %w", p.Name, err)
	}
	return nil
}

// Load reads a preset by name
func (s *PresetStore) Load(name string) (Preset, error) {
	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		return Preset{}, fmt.Errorf("read preset %s: %w", name, err)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("decode preset %s: %w", name, err)
	}
	return p, nil
}

// Delete removes a preset by name
func (s *PresetStore) Delete(name string) error {
	if err := os.Remove(s.pathFor(name)); err != nil {
		return fmt.Errorf("delete preset %s: %w", name, err)
	}
	return nil
}

// List returns the saved preset names in sorted order
func (s *PresetStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// pathFor maps a preset name to its file, flattening anything that could
// escape the store directory
func (s *PresetStore) pathFor(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	return filepath.Join(s.dir, safe+".json")
}
