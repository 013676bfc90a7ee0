package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel atomic.Int32
	levelOnce    sync.Once
)

// ParseLevel converts a level name to a LogLevel. Unknown names map to info.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// initLevel reads DEBUG and LOG_LEVEL once
func initLevel() {
	levelOnce.Do(func() {
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel.Store(int32(LevelDebug))
				return
			}
		}
		currentLevel.Store(int32(ParseLevel(os.Getenv("LOG_LEVEL"))))
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return LogLevel(currentLevel.Load())
}

// SetLevel overrides the level derived from the environment.
func SetLevel(level LogLevel) {
	initLevel()
	currentLevel.Store(int32(level))
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(level LogLevel, prefix, format string, args ...interface{}) {
	if GetLevel() > level {
		return
	}
	log.Printf("["+strings.ToUpper(level.String())+"] "+prefix+format, args...)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, "", format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logf(LevelInfo, "", format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, "", format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logf(LevelError, "", format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
