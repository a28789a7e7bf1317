package config

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/transition"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "reconcile.yaml"

// Config is the complete configuration.
type Config struct {
	Transition TransitionConfig `koanf:"transition"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Server     ServerConfig     `koanf:"server"`
	Trace      TraceConfig      `koanf:"trace"`

	// File is the configuration file that was loaded, if any.
	File string `koanf:"-"`
}

// TransitionConfig configures the transition controller.
type TransitionConfig struct {
	DefaultName  string        `koanf:"default_name" validate:"required,excludesall= "`
	SafetyMargin time.Duration `koanf:"safety_margin" validate:"gte=0"`

	// Definitions are registered before any scenario definitions.
	Definitions map[string]transition.Definition `koanf:"definitions"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `koanf:"namespace" validate:"required"`
	Path      string `koanf:"path" validate:"required,startswith=/"`
}

// ServerConfig configures the mirror server.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	FrameInterval   time.Duration `koanf:"frame_interval" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	Exporter    string  `koanf:"exporter" validate:"oneof=none stdout"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

// defaults are the built-in values, keyed like the file.
func defaults() map[string]any {
	return map[string]any{
		"transition.default_name":  transition.DefaultName,
		"transition.safety_margin": "1ms",
		"log.level":                "info",
		"log.format":               "text",
		"metrics.namespace":        "reconcile",
		"metrics.path":             "/metrics",
		"server.addr":              "127.0.0.1:8080",
		"server.frame_interval":    "16ms",
		"server.shutdown_timeout":  "5s",
		"trace.exporter":           "none",
		"trace.sample_ratio":       1.0,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := newLoader().config()
	if err != nil {
		panic(err)
	}
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and the transition definitions.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.New("E201").WithDetail(describe(err)).Wrap(err)
	}
	if err := transition.NewRegistry().RegisterAll(c.Transition.Definitions); err != nil {
		return err
	}
	return nil
}

// describe lists the failed fields of a validation error.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Namespace() + " (" + fe.Tag() + ")"
	}
	return "invalid " + strings.Join(fields, ", ")
}

// TransitionOptions returns the controller options the configuration sets.
func (c *Config) TransitionOptions() []transition.Option {
	return []transition.Option{
		transition.WithDefaultName(c.Transition.DefaultName),
		transition.WithSafetyMargin(c.Transition.SafetyMargin),
	}
}

// NewLogger builds a logger writing to w in the configured format.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c LogConfig) level() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
