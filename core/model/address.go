package model

import "strings"

// Address is a postal address. Fields are opaque to the planner; only
// emptiness is checked on submission.
type Address struct {
	Street string `json:"street_name" yaml:"street_name" validate:"required"`
	City   string `json:"city" yaml:"city" validate:"required"`
	State  string `json:"state" yaml:"state" validate:"required"`
	Zip    string `json:"zip_code" yaml:"zip_code" validate:"required"`
}

// String renders the address as "street, city, state".
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
