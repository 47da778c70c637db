// Package selection tracks which derived option is active and whether its
// detail calendar is open.
package selection

import (
	"errors"
	"fmt"

	"github.com/kilianp07/sessionplanner/core/options"
)

// ErrOutOfRange is returned by strict selections outside [0, OptionCount).
var ErrOutOfRange = errors.New("selection out of range")

// Policy controls out-of-range selections.
type Policy string

const (
	// Strict rejects the selection and leaves state unchanged.
	Strict Policy = "strict"
	// Clamp moves the index to the nearest valid option.
	Clamp Policy = "clamp"
)

// ParsePolicy validates a configured policy. Empty means Strict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Strict:
		return Strict, nil
	case Clamp:
		return Clamp, nil
	}
	return "", fmt.Errorf("unknown selection policy %q", s)
}

// State is the selected option index plus the detail flag. The zero value is
// index 0 with the detail closed under the Strict policy. State is not safe
// for concurrent use; the owning session serializes access.
type State struct {
	policy     Policy
	index      int
	detailOpen bool
}

// New returns a reset State using p.
func New(p Policy) *State {
	if p == "" {
		p = Strict
	}
	return &State{policy: p}
}

// Policy returns the out-of-range policy.
func (s *State) Policy() Policy {
	if s.policy == "" {
		return Strict
	}
	return s.policy
}

// Select makes option i active.
func (s *State) Select(i int) error {
	if i < 0 || i >= options.OptionCount {
		if s.Policy() == Strict {
			return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, options.OptionCount)
		}
		i = min(max(i, 0), options.OptionCount-1)
	}
	s.index = i
	return nil
}

// Inspect selects i and opens its detail view.
func (s *State) Inspect(i int) error {
	if err := s.Select(i); err != nil {
		return err
	}
	s.detailOpen = true
	return nil
}

func (s *State) OpenDetail()  { s.detailOpen = true }
func (s *State) CloseDetail() { s.detailOpen = false }

// Snapshot returns the current index and detail flag.
func (s *State) Snapshot() (index int, detailOpen bool) { return s.index, s.detailOpen }

// Reset restores index 0 with the detail closed.
func (s *State) Reset() {
	s.index = 0
	s.detailOpen = false
}
