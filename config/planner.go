package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/sessionplanner/core/factory"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/selection"
)

// PlannerConfig tunes form handling, option derivation and sessions.
type PlannerConfig struct {
	// RangePolicy is "reject" or "clamp" for out-of-range numbers.
	RangePolicy string `json:"range_policy"`
	// SelectionPolicy is "strict" or "clamp" for out-of-range option indices.
	SelectionPolicy string `json:"selection_policy"`
	// Options lists the three derivation strategies in display order.
	Options           []factory.ModuleConfig `json:"options"`
	SessionTTLMinutes int                    `json:"session_ttl_minutes"`
}

func (c *PlannerConfig) SetDefaults() {
	if c.RangePolicy == "" {
		c.RangePolicy = string(normalize.PolicyReject)
	}
	if c.SelectionPolicy == "" {
		c.SelectionPolicy = "strict"
	}
	if len(c.Options) == 0 {
		c.Options = options.DefaultPlan()
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = 120
	}
}

// Validate builds every component once so that errors surface at load time.
func (c PlannerConfig) Validate() error {
	if _, err := normalize.New(normalize.RangePolicy(c.RangePolicy)); err != nil {
		return fmt.Errorf("planner.range_policy: %w", err)
	}
	if _, err := selection.ParsePolicy(c.SelectionPolicy); err != nil {
		return fmt.Errorf("planner.selection_policy: %w", err)
	}
	if _, err := options.NewDeriver(c.Options); err != nil {
		return fmt.Errorf("planner.options: %w", err)
	}
	return nil
}

// SessionTTL is how long an idle session is kept.
func (c PlannerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
