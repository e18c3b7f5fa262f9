// Package config loads camguardd's configuration: defaults, optionally
// overridden by a YAML file, optionally overridden again by environment
// variables. This layering mirrors the teacher's defaults-then-env
// approach, adding the YAML layer the teacher's go.mod carried a
// dependency for but never exercised.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is camguardd's full configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Resource ResourceConfig `yaml:"resource"`
}

// ServerConfig is the HTTP server's listen configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ResourceConfig configures the host façade: how many Camera resources
// to pre-register, their default streaming configuration, and the
// operation timeout profile.
type ResourceConfig struct {
	Count int `yaml:"count"`

	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
	DefaultFPS    int `yaml:"default_fps"`

	StartTimeout     time.Duration `yaml:"start_timeout"`
	StopTimeout      time.Duration `yaml:"stop_timeout"`
	PauseTimeout     time.Duration `yaml:"pause_timeout"`
	ResumeTimeout    time.Duration `yaml:"resume_timeout"`
	ReconfigTimeout  time.Duration `yaml:"reconfig_timeout"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
	FallbackTimeout  time.Duration `yaml:"fallback_timeout"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
	Debug          bool `yaml:"debug"`

	// AdapterLatency is how long the bundled stub adapter pretends each
	// hardware call takes. Zero means immediate.
	AdapterLatency time.Duration `yaml:"adapter_latency"`
}

// Default returns the built-in configuration: one resource, a
// 1280x720@30fps default stream, and the core's default timeout
// profile.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0,
		},
		Resource: ResourceConfig{
			Count:           1,
			DefaultWidth:    1280,
			DefaultHeight:   720,
			DefaultFPS:      30,
			StartTimeout:    5 * time.Second,
			StopTimeout:     5 * time.Second,
			PauseTimeout:    3 * time.Second,
			ResumeTimeout:   3 * time.Second,
			ReconfigTimeout: 4 * time.Second,
			ResetTimeout:    10 * time.Second,
			FallbackTimeout: 5 * time.Second,
			MetricsEnabled:  true,
			Debug:           false,
		},
	}
}

// Load builds a Config starting from Default, applying the YAML file at
// path (if CAMGUARD_CONFIG is set and non-empty), then applying
// environment variable overrides, then validating the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CAMGUARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Server.Host = getEnvOrDefault("CAMGUARD_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsIntOrDefault("CAMGUARD_PORT", cfg.Server.Port)
	cfg.Resource.Count = getEnvAsIntOrDefault("CAMGUARD_RESOURCE_COUNT", cfg.Resource.Count)
	cfg.Resource.Debug = getEnvAsBoolOrDefault("CAMGUARD_DEBUG", cfg.Resource.Debug)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate reports whether cfg is well-formed.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Resource.Count < 1 {
		return fmt.Errorf("resource count must be at least 1, got %d", c.Resource.Count)
	}
	return nil
}

// ServerAddress returns the server's listen address as host:port.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "1" || value == "true"
	}
	return defaultValue
}
