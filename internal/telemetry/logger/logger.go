package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging interface used by minikv components.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is json (default) or text. "console" is accepted for text.
	Format string
	// Output overrides File when set. With neither, logs go to stderr.
	Output io.Writer
	// AddSource adds source file information to log entries.
	AddSource bool

	// File is the path of a rotating log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     os.Stderr,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// level is shared by every logger built by New so SetLevel applies to all
// of them at once.
var level = new(slog.LevelVar)

// New creates a logger. It fails on an unknown level or format.
func New(cfg Config) (Logger, error) {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactPayload(a)
		},
	}

	w := outputFor(cfg)
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "console":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(lvl)
	return &slogLogger{sl: slog.New(h), ctx: context.Background()}, nil
}

func outputFor(cfg Config) io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// Slog returns the *slog.Logger behind l, for packages that take a
// plain slog logger. Loggers not created by this package get slog.Default.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(*slogLogger); ok {
		return sl.sl
	}
	return slog.Default()
}

// SetLevel changes the level of every logger created by New. An unknown
// name is ignored.
func SetLevel(name string) {
	if lvl, err := parseLevel(name); err == nil {
		level.Set(lvl)
	}
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// ValidLevel reports whether name is a level New and SetLevel accept.
func ValidLevel(name string) bool {
	_, err := parseLevel(name)
	return err == nil
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logger: unknown level %q", name)
}

type slogLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

func (l *slogLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{sl: l.sl, ctx: ctx}
}

var std atomic.Pointer[slogLogger]

func init() {
	std.Store(&slogLogger{sl: slog.Default(), ctx: context.Background()})
}

// SetDefault makes l the package default and, when l was built by New,
// the slog default too.
func SetDefault(l Logger) {
	sl, ok := l.(*slogLogger)
	if !ok {
		return
	}
	std.Store(sl)
	slog.SetDefault(sl.sl)
}

// Default returns the package default logger.
func Default() Logger {
	return std.Load()
}
