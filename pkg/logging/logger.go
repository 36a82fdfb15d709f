// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every log line as the "service" field.
const ServiceName = "tenders-api"

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelTrace logs everything, including per-attempt upstream traffic.
	LevelTrace LogLevel = "trace"

	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Str("service", ServiceName).Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
// Unknown levels fall back to info.
func parseLevel(level LogLevel) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(string(level)))
	if name == "warning" {
		name = "warn"
	}
	if name == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// Component names used in the "component" field.
const (
	ComponentAPI       = "api"
	ComponentUpstream  = "upstream-client"
	ComponentRefresher = "refresher"
	ComponentMapper    = "mapper"
	ComponentQuery     = "query"
)

// NewLogger creates a child of the global logger for component.
func NewLogger(component string) zerolog.Logger {
	return WithComponent(log.Logger, component)
}

// WithComponent returns a child of logger tagged with component.
// An existing component field is not removed; zerolog appends fields.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Trace: Per-attempt upstream traffic (retryablehttp request logs)
//
// Debug: Detailed information for debugging
//   - Single page fetched or failed
//   - Snapshot cache misses on read
//   - Worker pool completion
//
// Info: Normal operation events
//   - Refresh cycle start, publish and completion
//   - Fetch progress and completion
//   - Access log lines
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Page fetch failed (page treated as empty)
//   - Retry attempts
//   - Malformed tender id in upstream data
//   - Client errors (4xx) returned by the API
//
// Error: Error conditions requiring attention
//   - Refresh cycle failed (previous snapshot kept)
//   - Panics recovered in page fetches, cycles or handlers
//   - Unexpected server errors (5xx)
//   - Configuration errors
//
// Context Fields:
//   - component: emitting component (refresher, upstream-client, api, ...)
//   - cycle_id: refresh cycle identifier
//   - page: upstream page number
//   - status: HTTP status code
//   - error_class: upstream error classification
//   - request_id: API request identifier
//   - duration: operation duration
