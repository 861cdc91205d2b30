package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultLogPath is where the shared logger writes unless it cannot open the file
const DefaultLogPath = "/tmp/globninja.out"

// Logger provides a centralized logging mechanism for globninja
type Logger struct {
	logger *log.Logger
	file   *os.File
	mu     sync.Mutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance (singleton pattern)
func GetLogger() *Logger {
	once.Do(func() {
		var err error
		defaultLogger, err = NewLogger(DefaultLogPath)
		if err != nil {
			// Fallback to stderr if we can't create the log file
			defaultLogger = newLogger(os.Stderr, nil)
			defaultLogger.logger.Warn("failed to create log file, falling back to stderr", "err", err)
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger that writes to the specified file
func NewLogger(logPath string) (*Logger, error) {
	// Ensure the directory exists
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return newLogger(file, file), nil
}

// NewWriterLogger creates a logger that writes to w. Close is a no-op.
func NewWriterLogger(w io.Writer) *Logger {
	return newLogger(w, nil)
}

func newLogger(w io.Writer, file *os.File) *Logger {
	return &Logger{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			ReportCaller:    true,
			CallerOffset:    2,
			Prefix:          "globninja",
		}),
		file: file,
	}
}

// Base returns the structured logger handed to library packages
func (l *Logger) Base() *log.Logger {
	return l.logger
}

// SetLevel parses and applies a level name such as "debug" or "warn"
func (l *Logger) SetLevel(level string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetLevel(parsed)
	return nil
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Warnf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Debugf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Errorf(format, args...)
}

// Close closes the log file (if any)
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Convenience functions for the default logger
func Warning(format string, args ...interface{}) {
	GetLogger().Warning(format, args...)
}

func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// SetLevel changes the level of the default logger
func SetLevel(level string) error {
	return GetLogger().SetLevel(level)
}
