package options

import (
	"fmt"

	"github.com/kilianp07/sessionplanner/core/factory"
	"github.com/kilianp07/sessionplanner/core/model"
)

// Variant is the output of a Strategy: the option's entries plus the
// adjustments applied to its aggregates.
type Variant struct {
	Entries        []model.ScheduleEntry
	PenaltyMinutes int
	ReverseClients bool
}

// Strategy produces one option from the canonical schedule. Implementations
// must not modify canonical.
type Strategy interface {
	Name() string
	Apply(canonical []model.ScheduleEntry) Variant
}

// Identity presents the canonical schedule unchanged.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Apply(canonical []model.ScheduleEntry) Variant {
	return Variant{Entries: clone(canonical)}
}

// Truncate keeps the first len-Drop entries but never fewer than Min.
type Truncate struct {
	Drop int `json:"drop"`
	Min  int `json:"min"`
}

func (Truncate) Name() string { return "truncate" }

func (t Truncate) Apply(canonical []model.ScheduleEntry) Variant {
	n := max(len(canonical)-t.Drop, t.Min)
	n = min(max(n, 0), len(canonical))
	return Variant{Entries: clone(canonical[:n])}
}

// Rotate moves the first Shift entries to the end and charges a flat
// PenaltyMinutes of extra driving.
type Rotate struct {
	Shift          int  `json:"shift"`
	PenaltyMinutes int  `json:"penalty_minutes"`
	ReverseClients bool `json:"reverse_clients"`
}

func (Rotate) Name() string { return "rotate" }

func (r Rotate) Apply(canonical []model.ScheduleEntry) Variant {
	out := make([]model.ScheduleEntry, 0, len(canonical))
	if len(canonical) < r.Shift || r.Shift <= 0 {
		out = append(out, canonical...)
	} else {
		out = append(out, canonical[r.Shift:]...)
		out = append(out, canonical[:r.Shift]...)
	}
	return Variant{Entries: out, PenaltyMinutes: r.PenaltyMinutes, ReverseClients: r.ReverseClients}
}

func clone(in []model.ScheduleEntry) []model.ScheduleEntry {
	return append(make([]model.ScheduleEntry, 0, len(in)), in...)
}

var registry = builtinRegistry()

func builtinRegistry() *factory.Registry[Strategy] {
	reg := factory.NewRegistry[Strategy]()
	reg.MustRegister("identity", func(map[string]any) (Strategy, error) {
		return Identity{}, nil
	})
	reg.MustRegister("truncate", func(conf map[string]any) (Strategy, error) {
		t := Truncate{Drop: 2, Min: 2}
		if err := factory.Decode(conf, &t); err != nil {
			return nil, fmt.Errorf("truncate: %w", err)
		}
		if t.Drop < 0 || t.Min < 0 {
			return nil, fmt.Errorf("truncate: drop and min must not be negative")
		}
		return t, nil
	})
	reg.MustRegister("rotate", func(conf map[string]any) (Strategy, error) {
		r := Rotate{Shift: 2, PenaltyMinutes: 30, ReverseClients: true}
		if err := factory.Decode(conf, &r); err != nil {
			return nil, fmt.Errorf("rotate: %w", err)
		}
		if r.Shift < 0 || r.PenaltyMinutes < 0 {
			return nil, fmt.Errorf("rotate: shift and penalty_minutes must not be negative")
		}
		return r, nil
	})
	return reg
}

// RegisterStrategy adds a strategy factory identified by name.
func RegisterStrategy(name string, f factory.Factory[Strategy]) error {
	return registry.Register(name, f)
}

// Strategies lists the registered strategy names.
func Strategies() []string { return registry.Names() }
