package config

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/vgrid/internal/logging"
)

// Logger is the global zerolog logger instance.
//
//nolint:gochecknoglobals // Logger is intentionally global for application-wide structured logging
var Logger zerolog.Logger

// logResult holds the file-backed logger installed by InitLogger so it can be closed.
//
//nolint:gochecknoglobals // Tracks the global logger's file handle for proper cleanup
var logResult *logging.LogPathResult

// logMu protects concurrent access to logResult and Logger.
//
//nolint:gochecknoglobals // Guards the global logger state
var logMu sync.RWMutex

// InitLogger builds the global Logger from lc and returns the build result so the
// caller can report where logs go. A log file that cannot be opened falls back to
// stderr; the reason is in the result.
func InitLogger(lc LoggingConfig) *logging.LogPathResult {
	logMu.Lock()
	defer logMu.Unlock()

	closeLogFileLocked()

	result := logging.NewLoggerWithPath(lc.ToLoggingConfig())
	Logger = result.Logger
	if result.UsingFile {
		logResult = result
	}
	return result
}

// SetLogger replaces the global Logger. Any log file opened by InitLogger is closed.
func SetLogger(logger zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	closeLogFileLocked()
	Logger = logger
}

// SetLogLevel sets the global Logger's level. Unparseable levels mean info.
func SetLogLevel(level string) {
	logMu.Lock()
	defer logMu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	Logger = Logger.Level(lvl)
}

// CloseLogFile closes the current log file, if any, and points the Logger back
// at stderr so later writes do not go to a closed file.
func CloseLogFile() {
	logMu.Lock()
	defer logMu.Unlock()
	closeLogFileLocked()
}

// closeLogFileLocked must be called with logMu held.
func closeLogFileLocked() {
	if logResult == nil {
		return
	}
	_ = logResult.Close()
	logResult = nil
	Logger = consoleLogger(Logger.GetLevel())
}

func consoleLogger(lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// GetLogger returns the global logger instance.
func GetLogger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return Logger
}

//nolint:gochecknoinits // package-level logger must exist before configuration is loaded
func init() {
	Logger = consoleLogger(zerolog.InfoLevel)
}

// ToLoggingConfig converts the logging section to a logging.Config.
// A configured file switches output to "file"; otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = outputTypeFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns a copy of the global Logging section. Flag overrides
// such as --debug are applied by the caller.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
