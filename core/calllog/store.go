// Package calllog records the outcome of every optimizer call so past
// submissions can be inspected.
package calllog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/sessionplanner/core/model"
)

// Call statuses.
const (
	StatusApplied = "applied"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
	StatusStale   = "stale"
)

// Record captures one optimizer call.
type Record struct {
	Timestamp  time.Time              `json:"timestamp"`
	SessionID  string                 `json:"session_id"`
	Seq        uint64                 `json:"seq"`
	Status     string                 `json:"status"`
	Request    model.ClinicianRequest `json:"request"`
	Entries    int                    `json:"entries"`
	DriveTime  int                    `json:"drive_time"`
	DurationMS int64                  `json:"duration_ms"`
	Error      string                 `json:"error,omitempty"`
}

// Query filters records. Zero fields match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	SessionID string
	Status    string
	Limit     int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.SessionID != "" && r.SessionID != q.SessionID {
		return false
	}
	return q.Status == "" || r.Status == q.Status
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects the store backend: "jsonl", "sqlite" or "none".
type Config struct {
	Backend string `json:"backend" koanf:"backend"`
	Path    string `json:"path" koanf:"path"`
}

// Open creates the configured store.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		return Nop{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown call log backend %q", cfg.Backend)
}

// Nop discards records.
type Nop struct{}

func (Nop) Append(context.Context, Record) error          { return nil }
func (Nop) Query(context.Context, Query) ([]Record, error) { return []Record{}, nil }
func (Nop) Close() error                                  { return nil }
