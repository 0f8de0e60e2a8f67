package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a profile
// and the examinee's answers in order, plus optional per-turn expectations.
type Fixture struct {
	Description string                    `json:"description"`
	SessionID   string                    `json:"session_id,omitempty"`
	Profile     interview.ActivityProfile `json:"profile"`
	Answers     []string                  `json:"answers"`
	Config      *FixtureConfig            `json:"config,omitempty"`
	Expected    []FixtureExpectation      `json:"expected,omitempty"`
}

// FixtureConfig overrides engine thresholds for one run. Zero fields keep
// the defaults.
type FixtureConfig struct {
	ExplorationTurns   int `json:"exploration_turns,omitempty"`
	TurnBudget         int `json:"turn_budget,omitempty"`
	MotivationMinTurns int `json:"motivation_min_turns,omitempty"`
}

// FixtureExpectation pins what one turn should produce. Empty fields are not
// checked.
type FixtureExpectation struct {
	Turn   int    `json:"turn"` // 1-based question number
	Stage  string `json:"stage,omitempty"`
	Source string `json:"source,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Profile.Activity == "" {
		return nil, fmt.Errorf("fixture %s: profile.activity is required", path)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// FromHistory builds a fixture from a recorded interview. Only examinee
// turns are kept; interviewer questions are regenerated on replay.
func FromHistory(description string, profile interview.ActivityProfile, history []interview.Turn) *Fixture {
	f := &Fixture{Description: description, Profile: profile}
	for _, t := range history {
		if t.Role == interview.RoleExaminee {
			f.Answers = append(f.Answers, t.Text)
		}
	}
	return f
}

// EngineConfig applies the fixture's overrides to base.
func (f *Fixture) EngineConfig(base interview.Config) interview.Config {
	if f.Config == nil {
		return base
	}
	if f.Config.ExplorationTurns > 0 {
		base.ExplorationTurns = f.Config.ExplorationTurns
	}
	if f.Config.TurnBudget > 0 {
		base.TurnBudget = f.Config.TurnBudget
	}
	if f.Config.MotivationMinTurns > 0 {
		base.MotivationMinTurns = f.Config.MotivationMinTurns
	}
	return base
}

// #endregion fixture-loader
