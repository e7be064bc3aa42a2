// study.go
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RewardBand maps a word length to the points it earns when the word is a
// valid dictionary word.
type RewardBand struct {
	Length int     `yaml:"length"`
	Points float64 `yaml:"points"`
}

// Study mirrors the study definition used by the ingestion service so that
// one YAML file drives both sides. The reward table is the fallback for
// events whose payload omits the reward value.
type Study struct {
	Name          string       `yaml:"name"`
	Phases        []string     `yaml:"phases"`
	MinWordLength int          `yaml:"min_word_length"`
	MaxWordLength int          `yaml:"max_word_length"`
	Rewards       []RewardBand `yaml:"rewards"`
}

// LoadStudy reads and parses the study.yaml file.
func LoadStudy(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study file: %w", err)
	}

	var study Study
	if err := yaml.Unmarshal(data, &study); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study YAML: %w", err)
	}

	return &study, nil
}

// RewardForLength returns the reward for a word of the given length, or 0
// when the length is outside the reward table.
func (s *Study) RewardForLength(length int) float64 {
	for _, band := range s.Rewards {
		if band.Length == length {
			return band.Points
		}
	}
	return 0
}

// HasPhase reports whether the study definition declares the given phase.
func (s *Study) HasPhase(phase string) bool {
	for _, p := range s.Phases {
		if p == phase {
			return true
		}
	}
	return false
}
