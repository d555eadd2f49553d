package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig holds process-level settings outside the router itself.
type AppConfig struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Registry   RegistryConfig   `yaml:"registry"`
	Capability CapabilityConfig `yaml:"capability"`
	Cache      CacheConfig      `yaml:"cache"`
	Router     *FileConfig      `yaml:"router"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SnapshotConfig holds the knowledge snapshot directory settings.
type SnapshotConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
	Watch      bool     `yaml:"watch"`
}

// RegistryConfig holds the card registry database path.
type RegistryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CapabilityConfig points at the external retrieval capability.
type CapabilityConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// CacheConfig bounds the route assessment cache.
type CacheConfig struct {
	TTL        string `yaml:"ttl"`
	MaxEntries int    `yaml:"max_entries"`
}

// LoadApp reads and parses the application config file and applies defaults.
func LoadApp(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read app config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	ApplyAppDefaults(&cfg)
	return &cfg, nil
}

// RouterFile picks the router file config to resolve against defaults. An
// explicit path (flag, or the CARDBOT_CONFIG_FILE variable when the flag is
// empty) names a standalone YAML or JSON router config and wins over the app
// config's router section.
func RouterFile(path string, app *AppConfig) (*FileConfig, error) {
	if path == "" {
		path = os.Getenv("CARDBOT_CONFIG_FILE")
	}
	if path != "" {
		return LoadFile(path)
	}
	if app == nil {
		return nil, nil
	}
	return app.Router, nil
}

// ApplyAppDefaults fills zero values with defaults.
func ApplyAppDefaults(cfg *AppConfig) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = "./knowledge"
	}
	if cfg.Snapshot.Extensions == nil {
		cfg.Snapshot.Extensions = []string{".md", ".txt", ".json"}
	}
	if cfg.Registry.DatabasePath == "" {
		cfg.Registry.DatabasePath = "./cards.db"
	}
	if cfg.Capability.Timeout == "" {
		cfg.Capability.Timeout = "5s"
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "90s"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 512
	}
}
