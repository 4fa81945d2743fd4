package verify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SuiteBattery holds the cases of a user-supplied battery file.
const SuiteBattery Suite = "battery"

// Battery is a YAML-defined list of extra round-trip cases.
type Battery struct {
	Version int    `yaml:"version"`
	Cases   []Case `yaml:"cases"`
}

// Case is a single battery entry.
// Supported types: string, number, script.
type Case struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Input string `yaml:"input"`

	// script only: the global to inspect after running Input, an optional
	// string to seed it with, and its expected value in printed form.
	Global string `yaml:"global,omitempty"`
	Seed   string `yaml:"seed,omitempty"`
	Want   string `yaml:"want,omitempty"`
}

// LoadBattery reads a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	if _, err := b.checks(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Battery) checks() ([]check, error) {
	if b == nil {
		return nil, nil
	}
	out := make([]check, 0, len(b.Cases))
	for i, c := range b.Cases {
		id := c.ID
		if id == "" {
			id = "#" + strconv.Itoa(i+1)
		}
		switch strings.ToLower(strings.TrimSpace(c.Type)) {
		case "", "string":
			out = append(out, stringCheck(SuiteBattery, c.Input))
		case "number":
			n, err := strconv.ParseInt(strings.TrimSpace(c.Input), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("case %s: invalid number %q", id, c.Input)
			}
			out = append(out, numberCheck(SuiteBattery, n))
		case "script":
			if c.Global == "" {
				return nil, fmt.Errorf("case %s: script cases need a global to inspect", id)
			}
			var seed interface{}
			if c.Seed != "" {
				seed = c.Seed
			}
			out = append(out, scriptCheck(SuiteBattery, c.Input, c.Global, seed, printed(c.Want)))
		default:
			return nil, fmt.Errorf("case %s: unsupported type: %s", id, c.Type)
		}
	}
	return out, nil
}
