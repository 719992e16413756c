// Package config loads memlog settings from a YAML or JSON file with
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage selects and locates the backing database.
type Storage struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "postgres"
	Path   string `json:"path" yaml:"path"`     // SQLite file
	DSN    string `json:"dsn" yaml:"dsn"`       // PostgreSQL URL, plain or sealed
}

type Server struct {
	Addr string `json:"addr" yaml:"addr"`
}

type Log struct {
	Verbose bool `json:"verbose" yaml:"verbose"`
	JSON    bool `json:"json" yaml:"json"`
}

// Config is the full application configuration.
type Config struct {
	Storage Storage `json:"storage" yaml:"storage"`
	Server  Server  `json:"server" yaml:"server"`
	Log     Log     `json:"log" yaml:"log"`
}

// ValidationResult represents the outcome of a validation pass.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

var ErrUnsupportedFormat = errors.New("unsupported config format")

func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver: "sqlite",
			Path:   "memory.db",
		},
		Server: Server{
			Addr: "0.0.0.0:5000",
		},
	}
}

// Load reads a configuration file (JSON or YAML) on top of the defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (use .json or .yaml)", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path) // #nosec G304
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
		}
	}

	return cfg, nil
}

// ApplyEnv overrides settings from MEMLOG_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("MEMLOG_DB_DRIVER"); ok && v != "" {
		c.Storage.Driver = v
	}
	if v, ok := lookup("MEMLOG_DB_PATH"); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup("MEMLOG_DB_DSN"); ok && v != "" {
		c.Storage.DSN = v
	}
	if v, ok := lookup("MEMLOG_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() ValidationResult {
	res := ValidationResult{
		Valid:    true,
		Warnings: []string{},
		Errors:   []string{},
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			res.Valid = false
			res.Errors = append(res.Errors, "storage.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			res.Valid = false
			res.Errors = append(res.Errors, "storage.dsn is required for the postgres driver")
		}
	default:
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("storage.driver %q is not one of sqlite, postgres", c.Storage.Driver))
	}

	host, _, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("server.addr %q is not host:port", c.Server.Addr))
	} else if !isLoopback(host) {
		res.Warnings = append(res.Warnings, "server.addr is reachable from other machines and there is no access control")
	}

	return res
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
