package meta

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported metrics backends.
const (
	BackendStatsd     = "statsd"
	BackendPrometheus = "prometheus"
	BackendNoop       = "noop"
)

// ApplicationConfig is a top-level block for application-level meta configuration.
type ApplicationConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

// ServerConfig is a top-level block for HTTP server configuration.
type ServerConfig struct {
	Address string `yaml:"addr"`
}

// MetricsConfig is a top-level block for metrics configuration. Host, Port, and Prefix are the
// process-wide settings every per-request sink is constructed from.
type MetricsConfig struct {
	Backend    string  `yaml:"backend"`
	Host       string  `yaml:"host"`
	Port       int     `yaml:"port"`
	Prefix     string  `yaml:"prefix"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Config describes all application configuration options.
type Config struct {
	Application *ApplicationConfig `yaml:"application"`
	Server      *ServerConfig      `yaml:"server"`
	Metrics     *MetricsConfig     `yaml:"metrics"`
}

// ParseConfig parses a Config struct instance from a file specified as a path on disk.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config: err=%v", err)
	}

	return ParseConfigBytes(data)
}

// ParseConfigBytes parses and validates a Config from raw YAML.
func ParseConfigBytes(data []byte) (*Config, error) {
	var cfg *Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: err=%v", err)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config: empty config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MetricsBackend returns the normalized name of the configured metrics backend. An absent metrics
// block disables metrics; a block with no backend defaults to statsd.
func (c *Config) MetricsBackend() string {
	if c.Metrics == nil {
		return BackendNoop
	}

	backend := strings.ToLower(strings.TrimSpace(c.Metrics.Backend))
	if backend == "" {
		return BackendStatsd
	}

	return backend
}

// validate the contents of the configuration. Returns an error if validation failed; nil otherwise.
func (c *Config) validate() error {
	/* Server */

	if c.Server == nil {
		return fmt.Errorf("config: missing top-level server config key")
	}

	if c.Server.Address == "" {
		return fmt.Errorf("config: missing server listening address")
	}

	/* Metrics */

	// Users can omit the metrics block entirely to disable metrics reporting.
	switch backend := c.MetricsBackend(); backend {
	case BackendNoop, BackendPrometheus:
	case BackendStatsd:
		if c.Metrics.Host == "" {
			return fmt.Errorf("config: missing metrics statsd host")
		}

		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("config: invalid metrics statsd port: port=%d", c.Metrics.Port)
		}

		if c.Metrics.SampleRate < 0 || c.Metrics.SampleRate > 1 {
			return fmt.Errorf("config: statsd sample rate must be in range [0.0, 1.0]")
		}
	default:
		return fmt.Errorf("config: unknown metrics backend: backend=%s", backend)
	}

	return nil
}
