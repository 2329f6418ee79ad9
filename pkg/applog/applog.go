// Package applog is a small leveled logger wrapping the standard log
// package: Configure picks a destination and a minimum level once at
// startup, and package-level Trace/Debug/Info/Warn/Error gate on it.
package applog

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level is one of the five severities the logger understands.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// currentLevel holds the configured minimum level; anything below it is
// dropped without formatting its arguments.
var currentLevel = LevelInfo

// Options configures the destination and minimum level for Configure.
type Options struct {
	// Path, if non-empty, is a file to append log lines to.
	Path string
	// Stdout also writes to stdout; combined with Path, writes to both.
	Stdout bool
	// Level is one of TRACE, DEBUG, INFO, WARN, ERROR (case-insensitive).
	// Unrecognized or empty defaults to INFO.
	Level string
}

// Configure sets the process-wide log destination and minimum level. Call
// it once at startup, before any other package logs.
func Configure(opts Options) error {
	var writer io.Writer

	switch {
	case opts.Path != "":
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o666)
		if err != nil {
			return err
		}
		if opts.Stdout {
			writer = io.MultiWriter(f, os.Stdout)
		} else {
			writer = f
		}
	case opts.Stdout:
		writer = os.Stdout
	default:
		devNull, err := os.OpenFile(os.DevNull, os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writer = devNull
	}

	log.SetOutput(writer)
	currentLevel = parseLevel(opts.Level)
	return nil
}

func parseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Trace logs at TRACE level.
func Trace(format string, v ...any) {
	if currentLevel <= LevelTrace {
		log.Printf("[TRACE] "+format, v...)
	}
}

// Debug logs at DEBUG level.
func Debug(format string, v ...any) {
	if currentLevel <= LevelDebug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs at INFO level.
func Info(format string, v ...any) {
	if currentLevel <= LevelInfo {
		log.Printf("[INFO] "+format, v...)
	}
}

// Warn logs at WARN level. Default wraps it in the Warnf method that
// emergelog.Logger and pretend.Logger require.
func Warn(format string, v ...any) {
	if currentLevel <= LevelWarn {
		log.Printf("[WARN] "+format, v...)
	}
}

// Warnf is an alias of Warn matching the Logger interfaces the core
// packages accept (they're named Warnf there to read naturally as
// logger.Warnf(...) at call sites).
func Warnf(format string, v ...any) {
	Warn(format, v...)
}

// Error logs at ERROR level.
func Error(format string, v ...any) {
	if currentLevel <= LevelError {
		log.Printf("[ERROR] "+format, v...)
	}
}

// logger is the zero-size value backing Default.
type logger struct{}

func (logger) Warnf(format string, v ...any) { Warn(format, v...) }

// Default satisfies the small Logger interface pkg/emergelog and
// pkg/pretend accept, so callers can pass applog.Default straight through
// instead of writing an adapter at every call site.
var Default logger

