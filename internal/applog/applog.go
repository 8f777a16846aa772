// Package applog configures the process-wide zerolog logger used by the
// session engine, the dashboard, and the demo commands.
package applog

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "JT808_LOG_LEVEL"
	EnvLogNoColor = "JT808_LOG_NOCOLOR"
	EnvLogJSON    = "JT808_LOG_JSON"
)

// Profile selects the default level/format before environment overrides
// are applied.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

// ConfigureRuntime sets up the default logger for long-running commands.
func ConfigureRuntime() { Configure(ProfileRuntime) }

// ConfigureTest sets up a Debug-level logger for _test.go files.
func ConfigureTest() { Configure(ProfileTest) }

// Configure installs the global zerolog logger. Safe to call more than
// once; only the first call takes effect.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		level := zerolog.InfoLevel
		json := false
		noColor := false
		if profile == ProfileTest {
			level = zerolog.DebugLevel
		}

		if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
			level = lvl
		}
		if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
			json = v
		}
		if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
			noColor = v
		}

		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		var logger zerolog.Logger
		if json {
			logger = zerolog.New(os.Stderr)
		} else {
			out := colorable.NewColorable(os.Stderr)
			logger = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.RFC3339})
		}
		log := logger.With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &log
		globalLogger = log
	})
}

var globalLogger zerolog.Logger

// Logger returns the process-wide logger, configuring it with
// ProfileRuntime defaults if Configure has not already run.
func Logger() *zerolog.Logger {
	Configure(ProfileRuntime)
	return &globalLogger
}

// Component returns a child logger tagged with a "component" field, mirroring
// how the session engine and dashboard name their log lines.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
