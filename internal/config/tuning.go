package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/boddenberg/campus-budget-coach/internal/budget"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
)

// Tuning is the optional TOML file that overrides engine constants.
//
//	[budget]
//	reserve_ceiling = 150000
//
//	[goal]
//	rounding = "floor"
type Tuning struct {
	Budget budget.Tuning `toml:"budget"`
	Goal   goal.Tuning   `toml:"goal"`
}

// DefaultTuning returns the built-in constants.
func DefaultTuning() Tuning {
	return Tuning{
		Budget: budget.DefaultTuning(),
		Goal:   goal.DefaultTuning(),
	}
}

// LoadTuning reads the tuning file, returning defaults if it doesn't exist.
// A non-empty rounding policy overrides whatever the file says.
func LoadTuning(path, rounding string) (Tuning, error) {
	t := DefaultTuning()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &t); err != nil {
				return t, fmt.Errorf("parsing tuning file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return t, fmt.Errorf("reading tuning file: %w", err)
		}
	}

	if rounding != "" {
		t.Goal.Rounding = goal.RoundingPolicy(rounding)
	}
	policy, err := goal.ParseRoundingPolicy(string(t.Goal.Rounding))
	if err != nil {
		return t, err
	}
	t.Goal.Rounding = policy

	if t.Budget.NeedsFloorRatio < 0 || t.Budget.NeedsFloorRatio > 1 {
		return t, fmt.Errorf("needs_floor_ratio must be within [0, 1], got %v", t.Budget.NeedsFloorRatio)
	}
	if t.Budget.CeilingRatio < 1 {
		return t, fmt.Errorf("ceiling_ratio must be at least 1, got %v", t.Budget.CeilingRatio)
	}
	if t.Budget.ReserveCeiling < 0 {
		return t, fmt.Errorf("reserve_ceiling must not be negative, got %d", t.Budget.ReserveCeiling)
	}
	return t, nil
}
