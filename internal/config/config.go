// Package config loads the loop configuration from looper.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the workspace root.
const FileName = "looper.yml"

// Git holds the commit/push behavior between iterations.
type Git struct {
	Commit       bool   `yaml:"commit"`
	Push         bool   `yaml:"push"`
	Remote       string `yaml:"remote,omitempty"`
	BranchPrefix string `yaml:"branch-prefix,omitempty"`
}

// Proxy holds the thinking-strip proxy settings.
type Proxy struct {
	Enabled  bool   `yaml:"enabled"`
	Listen   string `yaml:"listen,omitempty"`
	Upstream string `yaml:"upstream,omitempty"`
}

// Config is the full loop configuration. Flags override file values,
// which override the defaults from Default.
type Config struct {
	Prompt         string `yaml:"prompt,omitempty"`
	Iterations     int    `yaml:"iterations,omitempty"`
	Model          string `yaml:"model,omitempty"`
	AllowedTools   string `yaml:"allowed-tools,omitempty"`
	PermissionMode string `yaml:"permission-mode,omitempty"`
	Git            Git    `yaml:"git,omitempty"`
	Proxy          Proxy  `yaml:"proxy,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Iterations: 1,
		Git: Git{
			Remote:       "origin",
			BranchPrefix: "looper",
		},
		Proxy: Proxy{
			Listen:   "127.0.0.1:4001",
			Upstream: "http://localhost:4000",
		},
	}
}

// Load reads looper.yml from dir, layered over Default. A missing file
// yields the defaults; a malformed file is an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}
	return cfg, nil
}

// Save writes the configuration to dir/looper.yml.
func Save(cfg Config, dir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
