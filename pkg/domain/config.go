package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk YAML shape of a transition table.
type tableFile struct {
	Name        string                 `yaml:"name"`
	Start       []ScoredAction         `yaml:"start"`
	Transitions map[int][]ScoredAction `yaml:"transitions"`
	Terminal    []int                  `yaml:"terminal"`
}

// ParseTable decodes and validates a YAML transition table definition.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse table definition: %w", err)
	}

	for action, continuations := range file.Transitions {
		if len(continuations) == 0 {
			return nil, fmt.Errorf("action %d declares an empty continuation list; omit it instead", action)
		}
	}

	return NewTable(file.Name, file.Start, file.Transitions, file.Terminal)
}

// LoadTable reads a transition table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
