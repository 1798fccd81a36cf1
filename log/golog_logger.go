package log

import (
	"fmt"

	"github.com/kataras/golog"
)

// GologLogger implements Logger using kataras/golog, for hosts that already
// route their logs through it.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a new logger backed by an existing golog.Logger.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

// Debug logs debug messages
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// Info logs informational messages
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Warn logs warning messages
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

// Error logs error messages
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// SetLevel adjusts the underlying golog level to match.
func (l *GologLogger) SetLevel(level LogLevel) {
	switch level {
	case LogLevelDebug:
		l.logger.SetLevel("debug")
	case LogLevelInfo:
		l.logger.SetLevel("info")
	case LogLevelWarn:
		l.logger.SetLevel("warn")
	case LogLevelError:
		l.logger.SetLevel("error")
	case LogLevelNone:
		l.logger.SetLevel("disable")
	}
}
