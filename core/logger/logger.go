// Package logger defines the logging interface used across the planner.
package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger can log structured information at info level.
type StructuredLogger interface {
	Infow(msg string, fields map[string]any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debugf(string, ...any)         {}
func (Nop) Debugw(string, map[string]any) {}
func (Nop) Infof(string, ...any)          {}
func (Nop) Warnf(string, ...any)          {}
func (Nop) Errorf(string, ...any)         {}

// Infow logs through l as structured output when supported, otherwise as a
// formatted info line.
func Infow(l Logger, msg string, fields map[string]any) {
	if s, ok := l.(StructuredLogger); ok {
		s.Infow(msg, fields)
		return
	}
	l.Infof("%s %v", msg, fields)
}
