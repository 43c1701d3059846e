package debug

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Logger interface for debug logging.
// Provides debug output that can be enabled/disabled at runtime.
//
// Example usage:
//
//	logger := debug.GetLogger()
//	logger.Debugf("recalling %d from %s", amount, strategy)
type Logger interface {
	// Debugf logs a formatted debug message
	Debugf(format string, args ...any)
	// Debug logs debug arguments
	Debug(args ...any)
}

// nopLogger does nothing (used when debug mode is disabled).
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Debug(...any)          {}

// slogLogger writes debug records through a slog.Logger.
type slogLogger struct {
	logger *slog.Logger
}

func (s slogLogger) Debugf(format string, args ...any) {
	s.logger.Debug(fmt.Sprintf(format, args...))
}

func (s slogLogger) Debug(args ...any) {
	s.logger.Debug(fmt.Sprint(args...))
}

var (
	// l is the private global debug logger (use GetLogger() to access)
	l    Logger = nopLogger{}
	once sync.Once
)

// GetLogger returns the configured debug logger.
// Always use this function to access the logger instead of storing a reference.
func GetLogger() Logger {
	return l
}

// InitLogger initializes the debug logger based on debug mode.
// Call this after debug.Init() so Active.Enabled is set.
func InitLogger() {
	once.Do(func() {
		if Active.Enabled {
			l = newSlogLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			l.Debug("Debug logging enabled")
		}
	})
}

func newSlogLogger(h slog.Handler) Logger {
	return slogLogger{logger: slog.New(h).With("component", "debug")}
}
