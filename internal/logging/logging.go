// Package logging provides a singleton structured logger shared by the
// CLI dispatcher, the orchestrator, and every adapter.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	instance *log.Logger
	once     sync.Once
)

// Get returns the singleton logger instance.
func Get() *log.Logger {
	once.Do(func() {
		instance = log.NewWithOptions(os.Stderr, log.Options{
			Level:           log.InfoLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
	})
	return instance
}

// SetLevel sets the log level from a string, defaulting to Info for
// unrecognized values.
func SetLevel(level string) {
	l := Get()
	var logLevel log.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = log.DebugLevel
	case "info":
		logLevel = log.InfoLevel
	case "warn", "warning":
		logLevel = log.WarnLevel
	case "error":
		logLevel = log.ErrorLevel
	case "fatal":
		logLevel = log.FatalLevel
	default:
		logLevel = log.InfoLevel
	}
	l.SetLevel(logLevel)
	l.Debug("log level set", "level", level)
}

// ConfigureFromEnv honors DEVOBOX_LOG_LEVEL, falling back to Debug when
// DEVOBOX_VERBOSE is set.
func ConfigureFromEnv() {
	if level := os.Getenv("DEVOBOX_LOG_LEVEL"); level != "" {
		SetLevel(level)
		return
	}
	if os.Getenv("DEVOBOX_VERBOSE") != "" {
		Get().SetLevel(log.DebugLevel)
	}
}
