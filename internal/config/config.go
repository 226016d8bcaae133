// Package config provides configuration types and loading for stage-model-builder.
package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/stagemodel/stage-model-builder/internal/storage"
)

// Config holds all configuration options for one run.
type Config struct {
	Source  string         `koanf:"source"`
	Output  string         `koanf:"output"`
	Verbose bool           `koanf:"verbose"`
	Storage storage.Config `koanf:"storage"`
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here (such as --config itself) are not loaded.
var flagKeys = map[string]string{
	"host":    "storage.endpoint",
	"key":     "storage.key",
	"secret":  "storage.secret",
	"region":  "storage.region",
	"verbose": "verbose",
}

// Load builds a Config from defaults, an optional YAML file and explicitly
// set flags, in increasing order of precedence. Source and output are
// positional and are set by the caller.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only explicitly set flags override the file.
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Source == "" {
		errs = append(errs, errors.New("source file is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output file is required"))
	}
	return errors.Join(errs...)
}
