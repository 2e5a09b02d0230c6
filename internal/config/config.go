package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all bridge host configuration.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Bridge  BridgeConfig
	Policy  Policy
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// BridgeConfig holds bridge engine settings.
type BridgeConfig struct {
	AppVersion     string `envconfig:"APP_VERSION" default:"0.1.0"`
	MaxMessageSize int    `envconfig:"BRIDGE_MAX_MESSAGE_BYTES" default:"16384"`
	PolicyPath     string `envconfig:"BRIDGE_POLICY_FILE" default:""`
}

// Policy is the static trust policy: which hosts the surface may render, and
// which origins may speak over the bridge. It has no reload path; restart to
// change it.
type Policy struct {
	NavigationHosts  []string `yaml:"navigation_hosts"`
	TrustedOrigins   []string `yaml:"trusted_origins"`
	LocalScheme      string   `yaml:"local_scheme"`
	AllowLocalScheme bool     `yaml:"allow_local_scheme"`
}

// DefaultPolicy returns the built-in policy used when no policy file is
// configured.
func DefaultPolicy() Policy {
	return Policy{
		NavigationHosts:  []string{"apple.com"},
		TrustedOrigins:   []string{"apple.com", "app"},
		LocalScheme:      "app",
		AllowLocalScheme: true,
	}
}

// Load reads configuration from environment variables, then overlays the
// policy file when one is configured.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Policy = DefaultPolicy()
	if cfg.Bridge.PolicyPath != "" {
		policy, err := LoadPolicy(cfg.Bridge.PolicyPath)
		if err != nil {
			return nil, err
		}
		cfg.Policy = *policy
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or falls back to
// defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadPolicy parses a YAML policy file.
func LoadPolicy(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var policy Policy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return &policy, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Bridge: BridgeConfig{
			AppVersion:     "0.1.0",
			MaxMessageSize: 16 * 1024,
		},
		Policy: DefaultPolicy(),
	}
}
