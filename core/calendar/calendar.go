// Package calendar groups schedule entries by weekday for the detail view.
package calendar

import "github.com/kilianp07/sessionplanner/core/model"

// NoAppointments is the label shown for a weekday without entries.
const NoAppointments = "No appointments"

// Partition buckets entries by day, keeping input order inside each bucket.
// Days without entries have no key.
func Partition(entries []model.ScheduleEntry) map[int][]model.ScheduleEntry {
	out := make(map[int][]model.ScheduleEntry)
	for _, e := range entries {
		out[e.Day] = append(out[e.Day], e)
	}
	return out
}

// DayColumn is one weekday of the week view.
type DayColumn struct {
	Day     int                   `json:"day"`
	Name    string                `json:"name"`
	Entries []model.ScheduleEntry `json:"entries"`
	Empty   bool                  `json:"empty"`
}

// Week lays entries out as Monday..Friday columns. A missing bucket and an
// empty bucket both produce an Empty column. Entries on other days are not
// shown.
func Week(entries []model.ScheduleEntry) []DayColumn {
	byDay := Partition(entries)
	cols := make([]DayColumn, 0, model.LastWeekday-model.FirstWeekday+1)
	for d := model.FirstWeekday; d <= model.LastWeekday; d++ {
		es := byDay[d]
		if es == nil {
			es = []model.ScheduleEntry{}
		}
		cols = append(cols, DayColumn{Day: d, Name: model.WeekdayName(d), Entries: es, Empty: len(es) == 0})
	}
	return cols
}

// Hidden returns the entries Week leaves out because their day is not a
// planner weekday.
func Hidden(entries []model.ScheduleEntry) []model.ScheduleEntry {
	var out []model.ScheduleEntry
	for _, e := range entries {
		if !model.ValidWeekday(e.Day) {
			out = append(out, e)
		}
	}
	return out
}
