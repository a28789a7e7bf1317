package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/vango-dev/reconcile/internal/errors"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "RECONCILE_"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":               "server.addr",
	"frame-interval":     "server.frame_interval",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"metrics-namespace":  "metrics.namespace",
	"default-transition": "transition.default_name",
	"safety-margin":      "transition.safety_margin",
	"trace-exporter":     "trace.exporter",
}

type loader struct {
	k *koanf.Koanf
}

func newLoader() *loader {
	k := koanf.New(".")
	// The defaults map is static; loading it cannot fail.
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	return &loader{k: k}
}

// Load builds the configuration from defaults, the file at path, the
// environment and the flags that were set. An empty path selects
// FileName when it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	l := newLoader()

	used := path
	if used == "" {
		if _, err := os.Stat(FileName); err == nil {
			used = FileName
		}
	}
	if used != "" {
		if err := l.k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errors.New("E200").WithDetailf("reading %s", used).Wrap(err)
		}
	}

	if err := l.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.New("E200").WithDetail("reading environment").Wrap(err)
	}

	if flags != nil {
		if err := l.k.Load(posflag.ProviderWithFlag(flags, ".", l.k, flagKey(flags)), nil); err != nil {
			return nil, errors.New("E200").WithDetail("reading flags").Wrap(err)
		}
	}

	cfg, err := l.config()
	if err != nil {
		return nil, err
	}
	cfg.File = used
	return cfg, nil
}

func (l *loader) config() (*Config, error) {
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New("E200").WithDetail("decoding configuration").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RECONCILE_SERVER_FRAME_INTERVAL to server.frame_interval.
// Only known keys are taken; anything else is ignored.
func envKey(name string) string {
	flat := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for key := range defaults() {
		if strings.ReplaceAll(key, ".", "_") == flat {
			return key
		}
	}
	return ""
}

func flagKey(flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}
