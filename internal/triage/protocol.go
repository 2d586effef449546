package triage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BodyArea is one stop of the injury survey.
type BodyArea struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// Protocol is the configuration an assessment is run against.
type Protocol struct {
	Name      string     `yaml:"name" json:"name"`
	BodyAreas []BodyArea `yaml:"body_areas" json:"body_areas"`
}

// DefaultProtocol is the brigade's standard head-to-toe survey.
func DefaultProtocol() Protocol {
	return Protocol{
		Name: "default",
		BodyAreas: []BodyArea{
			{Key: "head_neck", Label: "Head / neck"},
			{Key: "chest", Label: "Chest"},
			{Key: "abdomen", Label: "Abdomen"},
			{Key: "pelvis", Label: "Pelvis"},
			{Key: "extremities", Label: "Extremities"},
			{Key: "back", Label: "Back"},
		},
	}
}

// LoadProtocol reads a YAML protocol file.
func LoadProtocol(path string) (Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Protocol{}, fmt.Errorf("read protocol %s: %w", path, err)
	}
	return ParseProtocol(data)
}

// ParseProtocol decodes and validates a YAML protocol.
func ParseProtocol(data []byte) (Protocol, error) {
	var p Protocol
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Protocol{}, fmt.Errorf("decode protocol: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Protocol{}, err
	}
	return p, nil
}

// Validate requires at least one body area and unique, non-empty keys.
func (p Protocol) Validate() error {
	if len(p.BodyAreas) == 0 {
		return fmt.Errorf("protocol %q: at least one body area is required", p.Name)
	}
	seen := make(map[string]bool, len(p.BodyAreas))
	for i, a := range p.BodyAreas {
		if a.Key == "" {
			return fmt.Errorf("protocol %q: body area %d has no key", p.Name, i)
		}
		if seen[a.Key] {
			return fmt.Errorf("protocol %q: duplicate body area %q", p.Name, a.Key)
		}
		seen[a.Key] = true
	}
	return nil
}

// AreaKeys returns the body area keys in survey order.
func (p Protocol) AreaKeys() []string {
	keys := make([]string, len(p.BodyAreas))
	for i, a := range p.BodyAreas {
		keys[i] = a.Key
	}
	return keys
}
