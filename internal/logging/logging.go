// Package logging builds the process logger and reads BENCHOPT_* environment
// defaults.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables consulted for defaults.
const (
	EnvLogLevel  = "BENCHOPT_LOG_LEVEL"
	EnvLogFormat = "BENCHOPT_LOG_FORMAT"
	EnvAddr      = "BENCHOPT_ADDR"
	EnvModelsDir = "BENCHOPT_MODELS_DIR"
	EnvConfig    = "BENCHOPT_CONFIG"

	EnvMaxBodyBytes = "BENCHOPT_MAX_BODY_BYTES"
	EnvCORSEnabled  = "BENCHOPT_CORS_ENABLED"
	EnvCORSOrigins  = "BENCHOPT_CORS_ORIGINS"
	// Per-request log level of the HTTP layer: off|error|info|debug.
	EnvHTTPLogLevel = "BENCHOPT_HTTP_LOG_LEVEL"
)

// ParseLevel maps a level name to a zerolog level. Unknown names fall back
// to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup returns a logger writing to w in the given format ("json" or
// "console").
func Setup(w io.Writer, level, format string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	var out io.Writer
	switch strings.ToLower(format) {
	case "json":
		out = w
	case "console", "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want json or console)", format)
	}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}

// EnvStr returns the value of key, or def when unset.
func EnvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
