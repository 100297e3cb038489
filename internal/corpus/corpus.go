// Package corpus loads the demonstration texts the demo command runs NER
// over. Examples come from a JSON file or from the embedded default set.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed examples.json
var embedded []byte

// Example is one demonstration text. Labels lists the entity types the
// example is expected to showcase; an empty list means "whatever the model
// reports".
type Example struct {
	Name   string   `json:"name"`
	Text   string   `json:"text"`
	Labels []string `json:"labels,omitempty"`
}

// Embedded returns the built-in example set.
func Embedded() ([]Example, error) {
	examples, err := parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("embedded examples: %w", err)
	}
	return examples, nil
}

// Load reads examples from a JSON file.
func Load(path string) ([]Example, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load examples: %w", err)
	}
	examples, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("load examples %s: %w", path, err)
	}
	return examples, nil
}

func parse(raw []byte) ([]Example, error) {
	var examples []Example
	if err := json.Unmarshal(raw, &examples); err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples")
	}
	seen := make(map[string]bool, len(examples))
	for i := range examples {
		ex := &examples[i]
		if strings.TrimSpace(ex.Text) == "" {
			return nil, fmt.Errorf("example %d has empty text", i)
		}
		if ex.Name == "" {
			ex.Name = fmt.Sprintf("example-%d", i+1)
		}
		if seen[ex.Name] {
			return nil, fmt.Errorf("duplicate example name %q", ex.Name)
		}
		seen[ex.Name] = true
	}
	return examples, nil
}
