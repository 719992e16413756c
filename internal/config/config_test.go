package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Expected driver 'sqlite', got '%s'", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "memory.db" {
		t.Errorf("Expected path 'memory.db', got '%s'", cfg.Storage.Path)
	}
	if cfg.Server.Addr != "0.0.0.0:5000" {
		t.Errorf("Expected addr '0.0.0.0:5000', got '%s'", cfg.Server.Addr)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "memlog.yaml")
	os.WriteFile(yamlPath, []byte("storage:\n  path: /var/lib/memlog/notes.db\nlog:\n  verbose: true\n"), 0600)

	jsonPath := filepath.Join(tmpDir, "memlog.json")
	os.WriteFile(jsonPath, []byte(`{"storage": {"driver": "postgres", "dsn": "postgres://localhost/memlog"}, "server": {"addr": "127.0.0.1:8080"}}`), 0600)

	t.Run("YAML", func(t *testing.T) {
		cfg, err := Load(yamlPath)
		if err != nil {
			t.Fatalf("Failed to load YAML: %v", err)
		}
		if cfg.Storage.Path != "/var/lib/memlog/notes.db" {
			t.Errorf("Expected path from file, got '%s'", cfg.Storage.Path)
		}
		if cfg.Storage.Driver != "sqlite" {
			t.Errorf("Expected default driver to survive partial file, got '%s'", cfg.Storage.Driver)
		}
		if !cfg.Log.Verbose {
			t.Error("Expected verbose from file")
		}
	})

	t.Run("JSON", func(t *testing.T) {
		cfg, err := Load(jsonPath)
		if err != nil {
			t.Fatalf("Failed to load JSON: %v", err)
		}
		if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://localhost/memlog" {
			t.Errorf("Unexpected storage %+v", cfg.Storage)
		}
		if cfg.Server.Addr != "127.0.0.1:8080" {
			t.Errorf("Expected addr from file, got '%s'", cfg.Server.Addr)
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load(\"\") failed: %v", err)
		}
		if cfg.Storage.Path != "memory.db" {
			t.Errorf("Expected defaults, got %+v", cfg.Storage)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		cfg, err := Load(filepath.Join(tmpDir, "absent.yaml"))
		if err != nil {
			t.Fatalf("Expected defaults for missing file, got %v", err)
		}
		if cfg.Server.Addr != "0.0.0.0:5000" {
			t.Errorf("Expected default addr, got '%s'", cfg.Server.Addr)
		}
	})

	t.Run("Invalid Extension", func(t *testing.T) {
		_, err := Load(filepath.Join(tmpDir, "memlog.txt"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		bad := filepath.Join(tmpDir, "bad.json")
		os.WriteFile(bad, []byte("{not json"), 0600)
		if _, err := Load(bad); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MEMLOG_DB_DRIVER": "postgres",
		"MEMLOG_DB_DSN":    "postgres://db/memlog",
		"MEMLOG_ADDR":      "127.0.0.1:9000",
		"MEMLOG_DB_PATH":   "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.ApplyEnv(lookup)

	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Expected driver override, got '%s'", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != "postgres://db/memlog" {
		t.Errorf("Expected dsn override, got '%s'", cfg.Storage.DSN)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Expected addr override, got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Path != "memory.db" {
		t.Errorf("Expected empty override to be ignored, got '%s'", cfg.Storage.Path)
	}
}

func TestValidate(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		res := Default().Validate()
		if !res.Valid {
			t.Errorf("Expected default config to be valid, got errors: %v", res.Errors)
		}
		if len(res.Warnings) != 1 {
			t.Errorf("Expected a warning for the wildcard listen address, got %v", res.Warnings)
		}
	})

	t.Run("Loopback", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Addr = "127.0.0.1:5000"
		res := cfg.Validate()
		if !res.Valid || len(res.Warnings) != 0 {
			t.Errorf("Expected clean result, got %+v", res)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		testCases := []struct {
			name   string
			mutate func(*Config)
			want   string
		}{
			{"Unknown Driver", func(c *Config) { c.Storage.Driver = "oracle" }, "storage.driver"},
			{"Missing Path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
			{"Missing DSN", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.dsn"},
			{"Bad Addr", func(c *Config) { c.Server.Addr = "5000" }, "server.addr"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				cfg := Default()
				tc.mutate(cfg)
				res := cfg.Validate()
				if res.Valid {
					t.Fatal("Expected invalid config")
				}
				if !strings.Contains(strings.Join(res.Errors, "\n"), tc.want) {
					t.Errorf("Expected error mentioning %q, got %v", tc.want, res.Errors)
				}
			})
		}
	})
}

func TestMarshal(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "driver: sqlite") {
		t.Errorf("Expected YAML output, got %q", data)
	}
}
