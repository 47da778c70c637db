package model

// Availability is a weekly working window on one weekday.
type Availability struct {
	Day   int    `json:"day_of_the_week" yaml:"day_of_the_week" validate:"gte=1,lte=5"`
	Start string `json:"start_time" yaml:"start_time" validate:"required"`
	End   string `json:"end_time" yaml:"end_time" validate:"required"`
}

// ClinicianRequest is the payload sent to the optimizer.
type ClinicianRequest struct {
	Address              Address        `json:"clinician_address"`
	Availabilities       []Availability `json:"clinician_availabilities" validate:"dive"`
	MaxClientsPerDay     int            `json:"max_clients_per_day" validate:"gte=1,lte=10"`
	SessionDurationHours float64        `json:"session_duration_hours" validate:"gte=1,lte=4,halfstep"`
}

// DefaultAvailabilities returns the Monday to Friday 09:00-17:00 week used
// to pre-fill a new form.
func DefaultAvailabilities() []Availability {
	out := make([]Availability, 0, LastWeekday-FirstWeekday+1)
	for d := FirstWeekday; d <= LastWeekday; d++ {
		out = append(out, Availability{Day: d, Start: "09:00", End: "17:00"})
	}
	return out
}
