package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
)

// LoadRules reads segmentation rules from a YAML file.
//
//	transition_keywords: [now, next, "moving on"]
//	min_transition_elapsed: 45
//	min_gap_elapsed: 60
//	pause_threshold: 2
//
// Omitted fields stay zero and fall back to the defaults in the segmenter.
// Unknown keys are rejected so typos do not silently revert to defaults.
func LoadRules(path string) (chapters.Rules, error) {
	f, err := os.Open(path) //#nosec G304 -- rules path comes from the operator
	if err != nil {
		return chapters.Rules{}, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	var rules chapters.Rules
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return chapters.Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if err := validateRules(rules); err != nil {
		return chapters.Rules{}, fmt.Errorf("rules file %s: %w", path, err)
	}

	return rules, nil
}

func validateRules(r chapters.Rules) error {
	if r.MinTransitionElapsed < 0 {
		return fmt.Errorf("min_transition_elapsed must not be negative: %v", r.MinTransitionElapsed)
	}
	if r.MinGapElapsed < 0 {
		return fmt.Errorf("min_gap_elapsed must not be negative: %v", r.MinGapElapsed)
	}
	if r.PauseThreshold < 0 {
		return fmt.Errorf("pause_threshold must not be negative: %v", r.PauseThreshold)
	}
	return nil
}
