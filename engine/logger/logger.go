// Package logger provides the engine-wide structured logger. It wraps a single
// charmbracelet/log instance and optionally tees its output into a rotating log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the engine logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error" or "fatal". Empty means "info".
	Level string

	// Prefix is printed before every message.
	Prefix string

	// File, when set, receives a copy of every log line through a rotating writer.
	File string

	// MaxSizeMB is the size in megabytes at which the log file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool

	// ReportCaller adds the calling file and line to each entry.
	ReportCaller bool
}

// DefaultOptions returns the options used before Configure is called.
//
// Returns:
//   - Options: info level, "oxy" prefix, stderr only
func DefaultOptions() Options {
	return Options{
		Level:        "info",
		Prefix:       "oxy",
		MaxSizeMB:    32,
		MaxBackups:   1,
		MaxAgeDays:   14,
		ReportCaller: true,
	}
}

var (
	mu        sync.RWMutex
	once      sync.Once
	singleton *log.Logger
	rotator   *lumberjack.Logger
)

func get() *log.Logger {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if singleton == nil {
			singleton = newLogger(os.Stderr, DefaultOptions(), log.InfoLevel)
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return singleton
}

func newLogger(w io.Writer, opts Options, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
	})
	l.SetLevel(level)
	return l
}

// Configure replaces the engine logger with one built from opts.
// When opts.File is set the parent directory is created and output goes to both
// stderr and the rotating file.
//
// Parameters:
//   - opts: logger options
//
// Returns:
//   - error: error if the level is unknown or the log directory cannot be created
func Configure(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	var rot *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		rot = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		w = io.MultiWriter(os.Stderr, rot)
	}

	l := newLogger(w, opts, level)
	once.Do(func() {})

	mu.Lock()
	old := rotator
	singleton = l
	rotator = rot
	mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// ParseLevel converts a level name; the empty name is "info".
//
// Parameters:
//   - name: one of "debug", "info", "warn", "error" or "fatal"
//
// Returns:
//   - log.Level: the parsed level
//   - error: error if the name is unknown
func ParseLevel(name string) (log.Level, error) {
	if name == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("failed to parse log level %q: %w", name, err)
	}
	return level, nil
}

// SetOutput routes all log output to w at debug level, without caller reporting.
// Intended for tests and headless tools that capture logs.
//
// Parameters:
//   - w: destination writer
func SetOutput(w io.Writer) {
	opts := DefaultOptions()
	opts.ReportCaller = false
	l := newLogger(w, opts, log.DebugLevel)
	once.Do(func() {})

	mu.Lock()
	old := rotator
	singleton = l
	rotator = nil
	mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// Close flushes and closes the rotating log file, if any.
//
// Returns:
//   - error: error from closing the file
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// WithPrefix returns a child logger that prints prefix before every message.
func WithPrefix(prefix string) *log.Logger {
	return get().WithPrefix(prefix)
}

// Debug logs a structured debug message.
func Debug(msg string, keyvals ...any) {
	l := get()
	l.Helper()
	l.Debug(msg, keyvals...)
}

// Info logs a structured info message.
func Info(msg string, keyvals ...any) {
	l := get()
	l.Helper()
	l.Info(msg, keyvals...)
}

// Warn logs a structured warning.
func Warn(msg string, keyvals ...any) {
	l := get()
	l.Helper()
	l.Warn(msg, keyvals...)
}

// Error logs a structured error.
func Error(msg string, keyvals ...any) {
	l := get()
	l.Helper()
	l.Error(msg, keyvals...)
}

// Fatal logs a structured error and exits the process.
func Fatal(msg string, keyvals ...any) {
	l := get()
	l.Helper()
	l.Fatal(msg, keyvals...)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	l := get()
	l.Helper()
	l.Debugf(format, args...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	l := get()
	l.Helper()
	l.Infof(format, args...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) {
	l := get()
	l.Helper()
	l.Warnf(format, args...)
}

// Errorf logs a formatted error.
func Errorf(format string, args ...any) {
	l := get()
	l.Helper()
	l.Errorf(format, args...)
}
