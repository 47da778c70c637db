package normalize

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/sessionplanner/core/model"
)

// RangePolicy decides what happens to numeric values outside their range.
type RangePolicy string

const (
	// PolicyReject reports out-of-range values as validation errors.
	PolicyReject RangePolicy = "reject"
	// PolicyClamp moves out-of-range values to the nearest bound.
	PolicyClamp RangePolicy = "clamp"
)

const (
	minClients  = 1
	maxClients  = 10
	minDuration = 1.0
	maxDuration = 4.0
)

// Result is a normalized request plus the time values that were kept
// verbatim.
type Result struct {
	Request  model.ClinicianRequest `json:"request"`
	Warnings []TimeWarning          `json:"warnings,omitempty"`
}

// Normalizer validates and coerces clinician forms.
type Normalizer struct {
	policy   RangePolicy
	validate *validator.Validate
}

// New returns a Normalizer applying policy. An empty policy means reject.
func New(policy RangePolicy) (*Normalizer, error) {
	switch policy {
	case "":
		policy = PolicyReject
	case PolicyReject, PolicyClamp:
	default:
		return nil, fmt.Errorf("unknown range policy %q", policy)
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		x := fl.Field().Float() * 2
		return x == math.Trunc(x)
	}); err != nil {
		return nil, err
	}
	return &Normalizer{policy: policy, validate: v}, nil
}

// Policy returns the configured range policy.
func (n *Normalizer) Policy() RangePolicy { return n.policy }

// Normalize converts the raw form into a ClinicianRequest. All field problems
// are collected into a single *ValidationError.
func (n *Normalizer) Normalize(in FormInput) (Result, error) {
	verr := &ValidationError{}
	var res Result
	req := model.ClinicianRequest{Address: trimAddress(in.Address)}

	if v, ok := parseNumber(in.MaxClientsPerDay); !ok || v != math.Trunc(v) {
		verr.add("max_clients_per_day", "max_clients_per_day must be a whole number")
	} else {
		// Bound v before the int conversion so huge inputs cannot wrap.
		switch {
		case n.policy == PolicyClamp:
			v = math.Min(math.Max(v, minClients), maxClients)
		case v > maxClients:
			v = maxClients + 1
		case v < minClients:
			v = minClients - 1
		}
		req.MaxClientsPerDay = int(v)
	}

	if v, ok := parseNumber(in.SessionDurationHours); !ok {
		verr.add("session_duration_hours", "session_duration_hours must be a number")
	} else {
		req.SessionDurationHours = v
		if n.policy == PolicyClamp {
			req.SessionDurationHours = math.Round(math.Min(math.Max(v, minDuration), maxDuration)*2) / 2
		}
	}

	byDay := map[int]model.Availability{}
	for i, row := range in.Availabilities {
		prefix := fmt.Sprintf("clinician_availabilities[%d]", i)
		day, ok := parseNumber(row.Day)
		if !ok || day != math.Trunc(day) || !model.ValidWeekday(int(day)) {
			verr.add(prefix+".day_of_the_week",
				fmt.Sprintf("%s.day_of_the_week must be an integer between %d and %d", prefix, model.FirstWeekday, model.LastWeekday))
			continue
		}
		if strings.TrimSpace(row.Start) == "" || strings.TrimSpace(row.End) == "" {
			verr.add(prefix+".start_time", fmt.Sprintf("%s start_time and end_time are required", prefix))
			continue
		}
		start := NormalizeTime(row.Start)
		end := NormalizeTime(row.End)
		if !start.Parsed {
			res.Warnings = append(res.Warnings, TimeWarning{Field: prefix + ".start_time", Value: start.Value})
		}
		if !end.Parsed {
			res.Warnings = append(res.Warnings, TimeWarning{Field: prefix + ".end_time", Value: end.Value})
		}
		if start.Parsed && end.Parsed && start.Value >= end.Value {
			verr.add(prefix+".end_time", fmt.Sprintf("%s.end_time must be after start_time", prefix))
		}
		// Last row for a day wins.
		byDay[int(day)] = model.Availability{Day: int(day), Start: start.Value, End: end.Value}
	}
	req.Availabilities = sortedAvailabilities(byDay)

	if err := n.validate.Struct(req); err != nil {
		if fes, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fes {
				field := fieldPath(fe.Namespace())
				verr.add(field, describe(field, fe))
			}
		} else {
			return Result{}, err
		}
	}
	if !verr.empty() {
		return Result{Warnings: res.Warnings}, verr
	}
	res.Request = req
	return res, nil
}

func parseNumber(r RawValue) (float64, bool) {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func trimAddress(a model.Address) model.Address {
	return model.Address{
		Street: strings.TrimSpace(a.Street),
		City:   strings.TrimSpace(a.City),
		State:  strings.TrimSpace(a.State),
		Zip:    strings.TrimSpace(a.Zip),
	}
}

func sortedAvailabilities(byDay map[int]model.Availability) []model.Availability {
	out := make([]model.Availability, 0, len(byDay))
	for _, a := range byDay {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "lte":
		return field + " must be less than or equal to " + fe.Param()
	case "halfstep":
		return field + " must be a multiple of 0.5"
	default:
		return field + " is invalid"
	}
}
