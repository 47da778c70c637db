package options

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/sessionplanner/core/model"
)

// OptionCount is the number of options derived from every canonical schedule.
const OptionCount = 3

// NominalSessionHours is the per-visit duration used for TotalHours. The
// requested session duration is not applied here.
const NominalSessionHours = 2

// Option is one derived, display-only variant of a canonical schedule.
type Option struct {
	ID             int                   `json:"id"`
	Title          string                `json:"title"`
	Strategy       string                `json:"strategy"`
	Entries        []model.ScheduleEntry `json:"entries"`
	TotalHours     int                   `json:"total_hours"`
	TotalDriveTime int                   `json:"total_drive_time"`
	AvgDriveTime   float64               `json:"avg_drive_time"`
	Clients        []string              `json:"clients"`
	Selected       bool                  `json:"selected"`
}

// Empty reports whether the option has no entries.
func (o Option) Empty() bool { return len(o.Entries) == 0 }

// Title returns the display title of the option at position i.
func Title(i int) string { return fmt.Sprintf("Schedule Option %d", i+1) }

func build(pos int, name string, v Variant, selected int) Option {
	entries := v.Entries
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	drive := driveTimes(entries)
	opt := Option{
		ID:             pos + 1,
		Title:          Title(pos),
		Strategy:       name,
		Entries:        entries,
		TotalHours:     len(entries) * NominalSessionHours,
		TotalDriveTime: int(floats.Sum(drive)),
		Clients:        distinctClients(entries),
		Selected:       pos == selected,
	}
	if len(entries) > 0 {
		opt.TotalDriveTime += v.PenaltyMinutes
		opt.AvgDriveTime = stat.Mean(drive, nil)
	}
	if v.ReverseClients {
		reverse(opt.Clients)
	}
	return opt
}

func driveTimes(entries []model.ScheduleEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = float64(e.DriveTime)
	}
	return out
}

// distinctClients returns client names in order of first appearance.
func distinctClients(entries []model.ScheduleEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ClientName]; ok {
			continue
		}
		seen[e.ClientName] = struct{}{}
		out = append(out, e.ClientName)
	}
	return out
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
