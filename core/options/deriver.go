package options

import (
	"fmt"
	"sync"

	"github.com/kilianp07/sessionplanner/core/factory"
	"github.com/kilianp07/sessionplanner/core/model"
)

// DefaultPlan is identity, truncate{drop:2,min:2}, rotate{shift:2,penalty:30}.
func DefaultPlan() []factory.ModuleConfig {
	return []factory.ModuleConfig{
		{Type: "identity"},
		{Type: "truncate", Conf: map[string]any{"drop": 2, "min": 2}},
		{Type: "rotate", Conf: map[string]any{"shift": 2, "penalty_minutes": 30, "reverse_clients": true}},
	}
}

// Deriver builds the option set with a fixed plan of strategies.
type Deriver struct {
	plan [OptionCount]Strategy
}

// NewDeriver creates a Deriver from module configs. An empty plan selects
// DefaultPlan.
func NewDeriver(plan []factory.ModuleConfig) (*Deriver, error) {
	if len(plan) == 0 {
		plan = DefaultPlan()
	}
	if len(plan) != OptionCount {
		return nil, fmt.Errorf("option plan needs %d strategies, got %d", OptionCount, len(plan))
	}
	d := &Deriver{}
	for i, c := range plan {
		s, err := registry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}
		d.plan[i] = s
	}
	return d, nil
}

// Plan returns the strategy names in option order.
func (d *Deriver) Plan() []string {
	out := make([]string, OptionCount)
	for i, s := range d.plan {
		out[i] = s.Name()
	}
	return out
}

// Derive returns exactly OptionCount options for canonical, marking the one
// at selected. canonical is never modified.
func (d *Deriver) Derive(canonical []model.ScheduleEntry, selected int) []Option {
	out := make([]Option, OptionCount)
	for i, s := range d.plan {
		out[i] = build(i, s.Name(), s.Apply(canonical), selected)
	}
	return out
}

var defaultDeriver = sync.OnceValue(func() *Deriver {
	d, err := NewDeriver(nil)
	if err != nil {
		panic(err)
	}
	return d
})

// Derive uses the default plan.
func Derive(canonical []model.ScheduleEntry, selected int) []Option {
	return defaultDeriver().Derive(canonical, selected)
}

// Reselect returns a copy of opts with Selected recomputed for index.
func Reselect(opts []Option, index int) []Option {
	out := make([]Option, len(opts))
	copy(out, opts)
	for i := range out {
		out[i].Selected = i == index
	}
	return out
}
