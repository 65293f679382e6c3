// Package logger builds configured slog loggers for the service.
//
// Production gets JSON output at info level for log aggregation, development
// gets human-readable text at debug level. The zero-option default is the
// production configuration so a misconfigured deployment fails safe.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development debugging.
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*config)

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

func WithFormat(f Format) Option {
	return func(c *config) {
		if f == FormatJSON || f == FormatText {
			c.format = f
		}
	}
}

// WithOutput sets a custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithEnvironment applies environment-appropriate defaults and tags every
// record with the service name and environment.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		switch env {
		case "production", "prod", "staging", "stage":
			c.level = slog.LevelInfo
			c.format = FormatJSON
		default:
			c.level = slog.LevelDebug
			c.format = FormatText
		}
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("env", env),
		)
	}
}

// New creates a configured slog.Logger.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(handler)
}

// SetAsDefault installs l as the process-wide default logger.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}
