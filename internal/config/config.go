package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/status"
	"github.com/claude/liftlog/internal/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Status    StatusConfig    `yaml:"status"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// WebDir is an optional directory holding the UI shell.
	WebDir string `yaml:"web_dir"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
	Key     string `yaml:"key"`
}

type CatalogConfig struct {
	// Path to a routines YAML file. Empty uses the built-in routines.
	Path string `yaml:"path"`
}

type StatusConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Stdout bool   `yaml:"stdout"`
	JSON   bool   `yaml:"json"`
}

// Default returns the configuration used for anything a file leaves unset.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Backend: storage.KindFile, DataDir: "data", Key: history.DefaultKey},
		Status:  StatusConfig{TTL: status.DefaultTTL},
		Tailscale: TailscaleConfig{
			Hostname: "liftlog",
			StateDir: "tsnet-state",
		},
		Log: LogConfig{Level: "info", Stdout: true},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix LIFTLOG_:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_WEB_DIR,
//	LIFTLOG_STORAGE_BACKEND, LIFTLOG_DATA_DIR, LIFTLOG_STORAGE_KEY,
//	LIFTLOG_CATALOG_PATH, LIFTLOG_STATUS_TTL,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME,
//	LIFTLOG_LOG_LEVEL, LIFTLOG_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_WEB_DIR"); v != "" {
		cfg.Server.WebDir = v
	}
	if v := os.Getenv("LIFTLOG_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("LIFTLOG_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("LIFTLOG_STORAGE_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("LIFTLOG_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("LIFTLOG_STATUS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Status.TTL = d
		}
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIFTLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LIFTLOG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Storage.Backend {
	case storage.KindFile, storage.KindSQLite:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for %s backend", c.Storage.Backend)
		}
	case storage.KindMemory:
	default:
		return fmt.Errorf("storage.backend %q is not one of file, sqlite, memory", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if c.Status.TTL <= 0 {
		return fmt.Errorf("status.ttl must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
