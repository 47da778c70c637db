package model

import "fmt"

const (
	// FirstWeekday is Monday.
	FirstWeekday = 1
	// LastWeekday is Friday.
	LastWeekday = 5
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// WeekdayName returns the English name of a planner weekday (1 = Monday).
// Unknown days render as "Day N".
func WeekdayName(day int) string {
	if day < FirstWeekday || day > LastWeekday {
		return fmt.Sprintf("Day %d", day)
	}
	return weekdayNames[day]
}

// ValidWeekday reports whether day is one of the planner weekdays.
func ValidWeekday(day int) bool { return day >= FirstWeekday && day <= LastWeekday }

// ScheduleEntry is one appointment returned by the optimizer. Entries are
// treated as immutable values.
type ScheduleEntry struct {
	Day           int     `json:"day" yaml:"day"`
	ClientID      string  `json:"client_id" yaml:"client_id"`
	ClientName    string  `json:"client_name" yaml:"client_name"`
	StartTime     string  `json:"start_time" yaml:"start_time"`
	EndTime       string  `json:"end_time" yaml:"end_time"`
	ClientAddress Address `json:"client_address" yaml:"client_address"`
	DriveTime     int     `json:"drive_time" yaml:"drive_time"` // minutes
}

// FormatDriveTime renders minutes as "1h 5m" or "45m".
func FormatDriveTime(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
