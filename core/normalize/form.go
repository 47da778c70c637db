package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sessionplanner/core/model"
)

// RawValue holds a form value exactly as entered. It decodes from either a
// JSON/YAML string or a bare number.
type RawValue string

// UnmarshalJSON accepts "4", 4 and null.
func (r *RawValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*r = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*r = RawValue(str)
	default:
		*r = RawValue(s)
	}
	return nil
}

// UnmarshalYAML keeps the scalar text of the node.
func (r *RawValue) UnmarshalYAML(node *yaml.Node) error {
	*r = RawValue(node.Value)
	return nil
}

// AvailabilityInput is one raw availability row.
type AvailabilityInput struct {
	Day   RawValue `json:"day_of_the_week" yaml:"day_of_the_week"`
	Start string   `json:"start_time" yaml:"start_time"`
	End   string   `json:"end_time" yaml:"end_time"`
}

// FormInput is the raw clinician form.
type FormInput struct {
	Address              model.Address       `json:"clinician_address" yaml:"clinician_address"`
	Availabilities       []AvailabilityInput `json:"clinician_availabilities" yaml:"clinician_availabilities"`
	MaxClientsPerDay     RawValue            `json:"max_clients_per_day" yaml:"max_clients_per_day"`
	SessionDurationHours RawValue            `json:"session_duration_hours" yaml:"session_duration_hours"`
}

// DefaultForm returns the form shown to a new user: Monday to Friday
// 09:00-17:00, four clients a day, two hour sessions.
func DefaultForm(city string) FormInput {
	av := model.DefaultAvailabilities()
	rows := make([]AvailabilityInput, len(av))
	for i, a := range av {
		rows[i] = AvailabilityInput{Day: RawValue(strconv.Itoa(a.Day)), Start: a.Start, End: a.End}
	}
	return FormInput{
		Address:              model.Address{City: city, State: "CA"},
		Availabilities:       rows,
		MaxClientsPerDay:     "4",
		SessionDurationHours: "2",
	}
}
