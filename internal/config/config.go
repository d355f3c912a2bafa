package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBind = "127.0.0.1"
	DefaultPort = 8787
)

// Config holds the dashboard's runtime settings. The default bind is
// loopback-only; a non-loopback address is an explicit operator opt-in.
type Config struct {
	Bind     string `yaml:"bind"`
	Port     int    `yaml:"port"`
	Root     string `yaml:"root"`
	StateDir string `yaml:"state_dir"`
	TasksDir string `yaml:"tasks_dir"`
	WebDir   string `yaml:"web_dir"`
	ModelCLI string `yaml:"model_cli"`
}

// Load builds the config from defaults, an optional YAML file, and
// CLAWDASH_* environment overrides, in that order. Callers apply flag
// overrides afterwards and then call Finalize.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Bind:     DefaultBind,
		Port:     DefaultPort,
		Root:     ".",
		ModelCLI: "openclaw",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("CLAWDASH_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("CLAWDASH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CLAWDASH_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("CLAWDASH_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("CLAWDASH_STATE"); v != "" {
		cfg.StateDir = v
	}

	return cfg, nil
}

// Finalize resolves the root to an absolute path and derives any unset
// directories from it.
func (c *Config) Finalize() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	c.Root = root

	if c.StateDir == "" {
		c.StateDir = filepath.Join(root, "sh", "state")
	}
	if c.TasksDir == "" {
		c.TasksDir = filepath.Join(root, "sh", "tasks")
	}
	if c.WebDir == "" {
		c.WebDir = filepath.Join(root, "web")
	}
	return nil
}

// RunDir is where per-run log files live.
func (c *Config) RunDir() string {
	return filepath.Join(c.StateDir, "runs")
}

// Addr is the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
