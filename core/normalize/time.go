package normalize

import (
	"strings"
	"time"
)

// ClockLayout is the canonical 24-hour wall-clock format.
const ClockLayout = "15:04"

var clockLayouts = []string{
	ClockLayout,
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15.04",
	"1504",
}

// TimeResult is the outcome of a best-effort time normalization. When Parsed
// is false Value holds the original input unchanged.
type TimeResult struct {
	Value  string
	Parsed bool
}

// Normalized tags v as a canonical HH:MM time.
func Normalized(v string) TimeResult { return TimeResult{Value: v, Parsed: true} }

// Unparsed tags v as an input that could not be understood.
func Unparsed(v string) TimeResult { return TimeResult{Value: v} }

// NormalizeTime converts s to HH:MM. Inputs that match none of the known
// layouts are returned unchanged as Unparsed.
func NormalizeTime(s string) TimeResult {
	in := strings.ToUpper(strings.TrimSpace(s))
	if in == "" {
		return Unparsed(s)
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, in)
		if err != nil {
			continue
		}
		return Normalized(t.Format(ClockLayout))
	}
	return Unparsed(s)
}

// TimeWarning reports a time field kept verbatim because it could not be
// normalized.
type TimeWarning struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
