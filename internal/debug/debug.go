// Package debug is the logging facade used across hoppla.
//
// It keeps a single zerolog logger writing to stderr. Progress notices are
// logged at info level, skipped entries and render fallbacks at warn level,
// and walker traces at debug level (enabled with SetDebug).
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	enabled bool
	quiet   bool
	noColor = !isatty.IsTerminal(os.Stderr.Fd())
	out     io.Writer = os.Stderr
	logger  = build()
)

func build() zerolog.Logger {
	var w io.Writer = out
	if f, ok := out.(*os.File); ok {
		w = zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: "15:04:05.000",
			NoColor:    noColor,
		}
	}

	level := zerolog.InfoLevel
	switch {
	case enabled:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func rebuild() {
	logger = build()
}

// SetDebug enables or disables debug mode
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	rebuild()
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetQuiet suppresses everything below error level.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
	rebuild()
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
	rebuild()
}

// SetOutput redirects log output. Writers other than *os.File receive
// JSON lines, which is what tests assert on.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

// Logger returns the current root logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns a logger tagged with the component name.
func Component(name string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", name).Logger()
}

// Debug prints a debug message
func Debug(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	l := Logger()
	l.Debug().Msg(fmt.Sprintf(format, args...))
}

// Debugf is an alias for Debug
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// DebugValue prints key=value style debug info
func DebugValue(key string, value interface{}) {
	if !IsEnabled() {
		return
	}
	l := Logger()
	l.Debug().Interface(key, value).Msg("value")
}

// DebugJSON prints structured data as JSON for debugging
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("Failed to marshal %s to JSON: %v", key, err)
		return
	}

	l := Logger()
	l.Debug().Str("key", key).Msg(string(jsonBytes))
}

// LogDuration logs how long an operation took at debug level.
func LogDuration(start time.Time, operation string) {
	l := Logger()
	l.Debug().Str("operation", operation).Dur("duration", time.Since(start)).Msg("Operation completed")
}
