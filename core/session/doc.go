// Package session holds the per-view state of one clinician: the last form,
// the canonical schedule returned by the optimizer, the options derived from
// it and the selection. A Session moves between FormVisible and
// ScheduleVisible. Every submission gets a sequence number and only the
// latest one may change what the user sees.
package session
