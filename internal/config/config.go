package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"composermcp/internal/logging"
	"composermcp/pkg/fileops"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "composer-scripts-mcp" // application name used for config directory

// Server defaults.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8088
	DefaultEndpoint = "/mcp"
)

// ServerConfig controls the HTTP transport.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Endpoint string `yaml:"endpoint"`
}

// InstallConfig controls desktop-client registration.
type InstallConfig struct {
	// Name overrides the server name derived from the manifest.
	Name string `yaml:"name,omitempty"`
}

// Config holds user configuration for composer-scripts-mcp.
type Config struct {
	// Manifest is the composer.json to serve. Empty means auto-detect.
	Manifest string        `yaml:"manifest,omitempty"`
	Server   ServerConfig  `yaml:"server"`
	Install  InstallConfig `yaml:"install"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Endpoint: DefaultEndpoint,
		},
	}
}

// Load reads the config from path, or from the standard location when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := LoadFrom(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug("No config file, using defaults", "path", path)
		defaults := DefaultConfig()
		return &defaults, nil
	}
	return cfg, err
}

// LoadFrom loads config from a specific path. Fields the file leaves unset
// keep their defaults.
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(fileops.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Endpoint != "" && c.Server.Endpoint[0] != '/' {
		return fmt.Errorf("server.endpoint %q must start with /", c.Server.Endpoint)
	}
	return nil
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := fileops.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logging.Info("Configuration saved", "path", path)
	return nil
}
