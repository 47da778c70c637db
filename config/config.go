package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/sessionplanner/core/calllog"
	"github.com/kilianp07/sessionplanner/core/metrics"
	"github.com/kilianp07/sessionplanner/infra/mqtt"
	"github.com/kilianp07/sessionplanner/infra/optimizer"
)

// EnvPrefix prefixes environment overrides. Nested keys use "__", so
// PLANNER_OPTIMIZER__BASE_URL sets optimizer.base_url.
const EnvPrefix = "PLANNER_"

type Config struct {
	LogLevel  string               `json:"log_level"`
	HTTP      HTTPConfig           `json:"http"`
	Optimizer optimizer.Config     `json:"optimizer"`
	Stub      optimizer.StubConfig `json:"stub"`
	Planner   PlannerConfig        `json:"planner"`
	Metrics   metrics.Config       `json:"metrics"`
	CallLog   calllog.Config       `json:"calllog"`
	MQTT      mqtt.Config          `json:"mqtt"`
}

// Load reads the file at path, then applies variables from an optional .env
// file and the process environment. An empty path loads defaults and
// environment overrides only.
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
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
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

// loadDotEnv reads .env from the working directory and from the config
// file's directory. Variables already set in the environment win.
func loadDotEnv(path string) error {
	files := []string{".env"}
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			files = append(files, filepath.Join(dir, ".env"))
		}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.HTTP.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Stub.SetDefaults()
	c.Planner.SetDefaults()
	setCallLogDefaults(&c.CallLog)
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	if err := validateCallLog(c.CallLog); err != nil {
		return err
	}
	if c.Metrics.HasSink("prometheus") && c.Metrics.PrometheusPort == "" {
		return fmt.Errorf("metrics.prometheus_port is required with a prometheus sink")
	}
	return c.MQTT.Validate()
}

// HTTPConfig configures the planner API server.
type HTTPConfig struct {
	Address string `json:"address"`
	// ReadTimeoutSeconds bounds reading a request. Submissions wait for the
	// optimizer, so WriteTimeoutSeconds must exceed optimizer.timeout_seconds.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
	// CallsToken protects GET /api/v1/calls when set.
	CallsToken string `json:"calls_token"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.WriteTimeoutSeconds <= 0 {
		c.WriteTimeoutSeconds = 60
	}
}

func (c HTTPConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("http.address is required")
	}
	return nil
}
