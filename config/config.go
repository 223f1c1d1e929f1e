package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	corejournal "github.com/kilianp07/invsched/core/journal"
	"github.com/kilianp07/invsched/core/metrics"
	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/mqtt"
	"github.com/kilianp07/invsched/internal/bench"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys are separated by a double underscore, for example
// K_SOLVER__MAX_STATES=5000.
const EnvPrefix = "K_"

type Config struct {
	Solver  scheduler.Config   `json:"solver"`
	Metrics metrics.Config     `json:"metrics"`
	MQTT    mqtt.Config        `json:"mqtt"`
	Journal corejournal.Config `json:"journal"`
	Logging LoggingConfig      `json:"logging"`
	Sentry  SentryConfig       `json:"sentry"`
	Bench   bench.Config       `json:"bench"`
	API     APIConfig          `json:"api"`
}

// Default returns a configuration with every section defaulted. It is used
// when no configuration file is given.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	return finish(k)
}

// Load reads a yaml or json file and applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	return finish(k)
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
}

func finish(k *koanf.Koanf) (*Config, error) {
	// Keys absent from the sources keep these values.
	cfg := Config{Bench: bench.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Metrics.SetDefaults()
	c.Journal.SetDefaults()
	c.Logging.SetDefaults()
	c.Bench.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Bench.Validate(); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	return nil
}
