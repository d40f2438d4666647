// Package config loads agentkey settings from ~/.agentkey/config.yaml
// with environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds agentkey settings.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds agent connection settings.
type AgentConfig struct {
	// Socket is the agent socket path. Empty means use SSH_AUTH_SOCK.
	Socket string `yaml:"socket"`
	// TimeoutSeconds bounds connect and each read/write.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			TimeoutSeconds: 10,
		},
	}
}

// Load reads ~/.agentkey/config.yaml and applies environment
// overrides. A missing or malformed file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(homeDir, ".agentkey", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg) // Ignore unmarshal errors, use defaults
		}
	}

	if sock := os.Getenv("AGENTKEY_SOCK"); sock != "" {
		cfg.Agent.Socket = sock
	}
	if timeoutStr := os.Getenv("AGENTKEY_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil {
			cfg.Agent.TimeoutSeconds = timeout
		}
	}

	return cfg, nil
}

// SocketPath resolves the agent socket: explicit config or env
// override first, then the conventional SSH_AUTH_SOCK.
func (c *Config) SocketPath() string {
	if c.Agent.Socket != "" {
		return c.Agent.Socket
	}
	return os.Getenv("SSH_AUTH_SOCK")
}

// Dir returns the path to ~/.agentkey.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".agentkey")
	}
	return filepath.Join(homeDir, ".agentkey")
}
