// Package config loads analyzer settings from an optional YAML file.
//
// Everything in the file is an operational knob (input locations, output
// paths, worker count, logging); command-line flags override any value the
// file sets. Config file locations, in priority order:
//  1. $TOPOLOGY_ANALYZER_CONFIG
//  2. ./topology-analyzer.yaml
//  3. $XDG_CONFIG_HOME/topology-analyzer/config.yaml
//  4. ~/.config/topology-analyzer/config.yaml
//  5. /etc/topology-analyzer/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "TOPOLOGY_ANALYZER_CONFIG"
	// ConfigFileName is the default config file name.
	ConfigFileName = "topology-analyzer.yaml"
	// ConfigDirName is the config directory name under XDG.
	ConfigDirName = "topology-analyzer"

	// SourceDir reads device configs from a directory tree.
	SourceDir = "dir"
	// SourceDB reads device configs from an archive database.
	SourceDB = "db"
)

// Config is the root settings structure.
type Config struct {
	Source   string         `yaml:"source"`
	Input    InputConfig    `yaml:"input"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
	Workers  int            `yaml:"workers"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig points at the directory tree holding config dumps.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// DatabaseConfig points at the config archive database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// OutputConfig names the artifacts a run writes.
type OutputConfig struct {
	Topology string `yaml:"topology"`
	Report   string `yaml:"report"`
}

// LogConfig controls log verbosity and destination.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned string is the path actually used, empty for defaults.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, path, nil
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = SourceDir
	}
	if c.Input.Dir == "" {
		c.Input.Dir = "./configs"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Output.Topology == "" {
		c.Output.Topology = "topology.json"
	}
	if c.Output.Report == "" {
		c.Output.Report = "findings.csv"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// FindConfigPath searches the standard locations in priority order and
// returns the first config file found, or empty string if none exists.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		if path := filepath.Join(xdgHome, ConfigDirName, "config.yaml"); fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		if path := filepath.Join(home, ".config", ConfigDirName, "config.yaml"); fileExists(path) {
			return path
		}
	}

	if path := filepath.Join("/etc", ConfigDirName, "config.yaml"); fileExists(path) {
		return path
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
