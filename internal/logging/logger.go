// Package logging provides structured logging on stderr using bolt.
// Stdout is reserved for the MCP stdio stream.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"
)

var (
	defaultLogger *bolt.Logger
	mu            sync.Mutex
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is the output format (json or console).
	Format string

	// Output is the output destination. Defaults to stderr.
	Output *os.File
}

// DefaultConfig returns console output at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stderr,
	}
}

func parseLevel(s string) bolt.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return bolt.TRACE
	case "debug":
		return bolt.DEBUG
	case "warn", "warning":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

// Init replaces the default logger.
func Init(config Config) {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	var handler bolt.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}

	mu.Lock()
	defaultLogger = bolt.New(handler).SetLevel(parseLevel(config.Level))
	mu.Unlock()
}

// Get returns the default logger, initializing it if necessary.
func Get() *bolt.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l != nil {
		return l
	}
	Init(DefaultConfig())
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// LogEvent wraps a bolt.Event so Fields can be chained onto it.
type LogEvent struct {
	event *bolt.Event
}

// With applies fields to the event.
func (l *LogEvent) With(fields ...Field) *LogEvent {
	for _, f := range fields {
		l.event = f(l.event)
	}
	return l
}

// Msg sends the log event with a message.
func (l *LogEvent) Msg(msg string) {
	l.event.Msg(msg)
}

// Debug starts a debug event.
func Debug() *LogEvent { return &LogEvent{event: Get().Debug()} }

// Info starts an info event.
func Info() *LogEvent { return &LogEvent{event: Get().Info()} }

// Warn starts a warn event.
func Warn() *LogEvent { return &LogEvent{event: Get().Warn()} }

// Error starts an error event.
func Error() *LogEvent { return &LogEvent{event: Get().Error()} }
