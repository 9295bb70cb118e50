package patterns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
)

type patternFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadFile reads custom patterns from a YAML file.
func LoadFile(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML pattern document.
func Parse(data []byte) ([]Pattern, error) {
	var f patternFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	seen := make(map[string]bool, len(f.Patterns))
	for i := range f.Patterns {
		p := &f.Patterns[i]
		if p.ID == "" {
			return nil, fmt.Errorf("pattern %d: missing id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("pattern %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if len(p.Causes) == 0 {
			return nil, fmt.Errorf("pattern %s: no causes", p.ID)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		switch p.Severity {
		case compliance.SeverityError, compliance.SeverityWarning, compliance.SeverityInfo:
		case "":
			p.Severity = compliance.SeverityWarning
		default:
			return nil, fmt.Errorf("pattern %s: unknown severity %q", p.ID, p.Severity)
		}
	}

	return f.Patterns, nil
}
