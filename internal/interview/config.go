package interview

import "time"

// #region config

// Config holds the engine's tunable thresholds. The defaults are empirically
// chosen and kept overridable rather than derived.
type Config struct {
	ExplorationTurns     int           `yaml:"exploration_turns" validate:"gte=1"`
	MinExplorationTurns  int           `yaml:"min_exploration_turns" validate:"gte=1"`  // earliest point a depth cue may end exploration
	TurnBudget           int           `yaml:"turn_budget" validate:"gte=4"`            // examinee turns before closing
	MotivationMinTurns   int           `yaml:"motivation_min_turns" validate:"gte=0"`   // "why this school" stays suppressed below this
	AlignmentMinLength   int           `yaml:"alignment_min_length" validate:"gte=0"`   // runes; shorter answers skip category checks
	ElaborationMinLength int           `yaml:"elaboration_min_length" validate:"gte=0"` // runes; shorter answers to "explain" are flagged
	MaxSentences         int           `yaml:"max_sentences" validate:"gte=1"`
	GenerationTimeout    time.Duration `yaml:"generation_timeout" validate:"gt=0"`
	ExcerptTokens        int           `yaml:"excerpt_tokens" validate:"gte=16"`
}

// DefaultConfig returns the baseline thresholds.
func DefaultConfig() Config {
	return Config{
		ExplorationTurns:     9,
		MinExplorationTurns:  3,
		TurnBudget:           24,
		MotivationMinTurns:   10,
		AlignmentMinLength:   15,
		ElaborationMinLength: 10,
		MaxSentences:         2,
		GenerationTimeout:    8 * time.Second,
		ExcerptTokens:        120,
	}
}

// withDefaults fills zero fields so a partially specified Config stays usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ExplorationTurns <= 0 {
		c.ExplorationTurns = d.ExplorationTurns
	}
	if c.MinExplorationTurns <= 0 {
		c.MinExplorationTurns = d.MinExplorationTurns
	}
	if c.TurnBudget <= 0 {
		c.TurnBudget = d.TurnBudget
	}
	if c.MotivationMinTurns <= 0 {
		c.MotivationMinTurns = d.MotivationMinTurns
	}
	if c.AlignmentMinLength <= 0 {
		c.AlignmentMinLength = d.AlignmentMinLength
	}
	if c.ElaborationMinLength <= 0 {
		c.ElaborationMinLength = d.ElaborationMinLength
	}
	if c.MaxSentences <= 0 {
		c.MaxSentences = d.MaxSentences
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = d.GenerationTimeout
	}
	if c.ExcerptTokens <= 0 {
		c.ExcerptTokens = d.ExcerptTokens
	}
	return c
}

// #endregion
