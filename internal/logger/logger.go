package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logging surface used across the CLI. It matches
// *charmlog.Logger, so the value returned by New satisfies it directly.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

var _ Logger = (*charmlog.Logger)(nil)

// Config selects level, sink and format.
type Config struct {
	Level  string
	Output io.Writer
	JSON   bool
}

// DefaultConfig logs info and above as text to stderr, keeping stdout free
// for reports.
func DefaultConfig() *Config {
	return &Config{Level: "info", Output: os.Stderr}
}

// ParseLevel maps a level name to a charm level; unknown names mean info.
func ParseLevel(s string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New builds a logger from cfg; nil means DefaultConfig.
func New(cfg *Config) *charmlog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

var defaultLogger = New(nil)

// Init replaces the package default logger.
func Init(cfg *Config) {
	defaultLogger = New(cfg)
}

// Default returns the package default logger.
func Default() *charmlog.Logger { return defaultLogger }

func Debug(msg string, keyvals ...any) { defaultLogger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { defaultLogger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { defaultLogger.Warn(msg, keyvals...) }
