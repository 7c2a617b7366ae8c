package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ScoreDeltas are the rating changes applied when a game ends.
type ScoreDeltas struct {
	Win          int `json:"win"`
	Loss         int `json:"loss"`
	Draw         int `json:"draw"`
	Disconnected int `json:"disconnected"`
	// Default is the score assumed for players without a record.
	Default int `json:"default"`
}

type GameConfig struct {
	BoardWidth            int         `json:"board_width"`
	BoardHeight           int         `json:"board_height"`
	WinLength             int         `json:"win_length"`
	TurnDurationSeconds   int         `json:"turn_duration_seconds"`
	DecisionWindowSeconds int         `json:"decision_window_seconds"`
	MaxParticipants       int         `json:"max_participants"`
	FixedRules            []string    `json:"fixed_rules"`
	Scores                ScoreDeltas `json:"scores"`
}

// Default returns the built-in configuration.
func Default() GameConfig {
	return GameConfig{
		BoardWidth:            10,
		BoardHeight:           10,
		WinLength:             5,
		TurnDurationSeconds:   15,
		DecisionWindowSeconds: 30,
		MaxParticipants:       4,
		Scores: ScoreDeltas{
			Win:          10,
			Loss:         -5,
			Draw:         0,
			Disconnected: -5,
			Default:      1000,
		},
	}
}

// Load reads the game configuration at path over the defaults.
// A missing file yields the defaults and no error.
func Load(path string) (GameConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return cfg.Normalized(), nil
}

// TurnDuration returns the per-turn budget.
func (c GameConfig) TurnDuration() time.Duration {
	return time.Duration(c.TurnDurationSeconds) * time.Second
}

// DecisionWindow returns how long players have to choose REMATCH or LEAVE.
func (c GameConfig) DecisionWindow() time.Duration {
	return time.Duration(c.DecisionWindowSeconds) * time.Second
}

// Normalized replaces unusable values with defaults.
func (c GameConfig) Normalized() GameConfig {
	d := Default()
	if c.BoardWidth <= 0 || c.BoardHeight <= 0 {
		c.BoardWidth, c.BoardHeight = d.BoardWidth, d.BoardHeight
	}
	if c.WinLength <= 0 {
		c.WinLength = d.WinLength
	}
	if c.TurnDurationSeconds <= 0 {
		c.TurnDurationSeconds = d.TurnDurationSeconds
	}
	if c.DecisionWindowSeconds <= 0 {
		c.DecisionWindowSeconds = d.DecisionWindowSeconds
	}
	if c.MaxParticipants <= 0 || c.MaxParticipants > d.MaxParticipants {
		c.MaxParticipants = d.MaxParticipants
	}
	if c.Scores.Default <= 0 {
		c.Scores.Default = d.Scores.Default
	}
	return c
}
