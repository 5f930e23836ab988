// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvLogLevel      = "DOCBASE_LOG_LEVEL"
	EnvLogFormat     = "DOCBASE_LOG_FORMAT"
	EnvStorageDriver = "DOCBASE_STORAGE_DRIVER"
	EnvStoragePath   = "DOCBASE_STORAGE_PATH"
	EnvModulesDir    = "DOCBASE_MODULES_DIR"
	EnvStrictKeys    = "DOCBASE_STRICT_KEYS"
	EnvBuildTimeout  = "DOCBASE_BUILD_TIMEOUT"
	EnvServerHost    = "DOCBASE_SERVER_HOST"
	EnvServerPort    = "DOCBASE_SERVER_PORT"
)

// Storage drivers for the bootstrap store.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Modules ModulesConfig `yaml:"modules"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the read-only catalog HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where bootstrap collections are provisioned.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "memory", "file" or "sqlite"
	Path   string `yaml:"path"`   // data dir for file, database path for sqlite
}

// ModulesConfig locates YAML module declarations.
type ModulesConfig struct {
	Dir string `yaml:"dir"` // optional; empty means only built-in modules
}

// CatalogConfig controls how the bootstrap catalog is built.
type CatalogConfig struct {
	// StrictKeys rejects settings keys declared by more than one module.
	StrictKeys bool `yaml:"strict_keys"`

	// BuildTimeout bounds settings schema resolution. Zero means no bound.
	BuildTimeout time.Duration `yaml:"build_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads from path if the file exists, otherwise from the
// environment.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvModulesDir); v != "" {
		cfg.Modules.Dir = v
	}
	if v := os.Getenv(EnvStrictKeys); v != "" {
		cfg.Catalog.StrictKeys = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvBuildTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Catalog.BuildTimeout = d
		}
	}
	if v := os.Getenv(EnvServerHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case DriverFile:
			cfg.Storage.Path = "data"
		case DriverSQLite:
			cfg.Storage.Path = "docbase.db"
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be one of memory, file, sqlite, got %q", cfg.Storage.Driver))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", cfg.Server.Port))
	}

	if cfg.Catalog.BuildTimeout < 0 {
		errs = append(errs, "catalog.build_timeout must not be negative")
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be json or console, got %q", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
