package logger

import (
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/sessionplanner/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

var level atomic.Int32

func init() { level.Store(int32(zerolog.InfoLevel)) }

// SetLevel changes the minimum level of loggers created afterwards. Unknown
// names leave the level unchanged and return false.
func SetLevel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return false
	}
	level.Store(int32(lvl))
	return true
}

// Level returns the current minimum level name.
func Level() string { return zerolog.Level(level.Load()).String() }

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
