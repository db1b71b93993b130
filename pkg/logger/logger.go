// Package logger configures the process-wide slog logger and bridges it to
// Hertz's hlog interface so framework logs land in the same stream.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects level, format, and destination for the process logger.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    string // stdout, stderr, or file
	FilePath  string // required when Output is file
	AddSource bool
}

// Setup builds the slog handler from opts and installs it as the default
// logger. It returns the logger so callers can pass it explicitly as well.
func Setup(opts Options) (*slog.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var writer io.Writer
	switch opts.Output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		if opts.FilePath == "" {
			return nil, fmt.Errorf("log file path is required when output is 'file'")
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = f
	default:
		return nil, fmt.Errorf("invalid log output: %s", opts.Output)
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("2006-01-02T15:04:05.000Z07:00"))
			}
			return a
		},
	}

	var handler slog.Handler
	switch opts.Format {
	case "json", "":
		handler = slog.NewJSONHandler(writer, hopts)
	case "text":
		handler = slog.NewTextHandler(writer, hopts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", opts.Format)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

type contextKey struct{}

// WithContext stores a request-scoped logger in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request-scoped logger, or the default one.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
