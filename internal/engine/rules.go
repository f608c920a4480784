package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cogui/internal/models"
)

// ruleFile matches the YAML structure of a rules policy file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and parses a rules policy file. The file may override the
// compiled rule set; callers should fall back to DefaultRules on error.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}

	for i, r := range file.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d has no name", i)
		}
		if len(r.Any) == 0 {
			return nil, fmt.Errorf("rule %q has no conditions", r.Name)
		}
		if len(r.Set) == 0 {
			return nil, fmt.Errorf("rule %q sets no preferences", r.Name)
		}
		for _, c := range r.Any {
			if !validDimension(c.Dimension) {
				return nil, fmt.Errorf("rule %q: unknown dimension %q", r.Name, c.Dimension)
			}
			if !c.Level.Valid() {
				return nil, fmt.Errorf("rule %q: unknown level %q", r.Name, c.Level)
			}
		}
		for _, k := range r.Set {
			if !validKey(k) {
				return nil, fmt.Errorf("rule %q: unknown preference key %q", r.Name, k)
			}
		}
	}

	return file.Rules, nil
}

func validDimension(d Dimension) bool {
	switch d {
	case DimAttention, DimLoad, DimFatigue, DimStress:
		return true
	}
	return false
}

func validKey(key models.PreferenceKey) bool {
	for _, k := range models.PreferenceKeys {
		if k == key {
			return true
		}
	}
	return false
}
