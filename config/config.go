package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridstatus/core/factory"
	"github.com/kilianp07/gridstatus/core/metrics"
	"github.com/kilianp07/gridstatus/core/poller"
	"github.com/kilianp07/gridstatus/infra/eia"
	"github.com/kilianp07/gridstatus/infra/httpx"
	"github.com/kilianp07/gridstatus/infra/mqtt"
)

// EnvPrefix marks environment overrides: GS_EIA__API_KEY sets eia.api_key.
const EnvPrefix = "GS_"

// EIAKeyEnv is read as-is and overrides eia.api_key.
const EIAKeyEnv = "EIA_API_KEY"

type Config struct {
	HTTP    httpx.Config         `json:"http"`
	EIA     eia.Config           `json:"eia"`
	ISOs    map[string]ISOConfig `json:"isos"`
	Poller  poller.Config        `json:"poller"`
	Store   factory.ModuleConfig `json:"store"`
	Metrics metrics.Config       `json:"metrics"`
	MQTT    mqtt.Config          `json:"mqtt"`
	API     APIConfig            `json:"api"`
	Sentry  SentryConfig         `json:"sentry"`
	Logging LoggingConfig        `json:"logging"`
	Tracing TracingConfig        `json:"tracing"`
}

// Load reads the configuration file at path, applies environment overrides,
// defaults and validation. An empty path loads defaults and the environment
// only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	if key := os.Getenv(EIAKeyEnv); key != "" {
		if err := k.Set("eia.api_key", key); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.EIA.SetDefaults()
	c.MQTT.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
	c.Tracing.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.EIA.Validate(); err != nil {
		return err
	}
	if err := validateISOs(c.ISOs); err != nil {
		return err
	}
	if _, err := c.Poller.Resolve(); err != nil {
		return fmt.Errorf("poller: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return c.Tracing.Validate()
}
