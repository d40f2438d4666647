package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Agent.TimeoutSeconds)
	assert.Empty(t, cfg.Agent.Socket)
}

func TestYAMLUnmarshal(t *testing.T) {
	data := []byte("agent:\n  socket: /tmp/agent.sock\n  timeout_seconds: 5\n")
	cfg := Default()
	require.NoError(t, yaml.Unmarshal(data, cfg))
	assert.Equal(t, "/tmp/agent.sock", cfg.Agent.Socket)
	assert.Equal(t, 5, cfg.Agent.TimeoutSeconds)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AGENTKEY_SOCK", "/run/user/1000/agent.sock")
	t.Setenv("AGENTKEY_TIMEOUT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/agent.sock", cfg.Agent.Socket)
	assert.Equal(t, 3, cfg.Agent.TimeoutSeconds)
}

func TestSocketPathFallsBackToAuthSock(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "/tmp/ssh-auth.sock")

	cfg := Default()
	assert.Equal(t, "/tmp/ssh-auth.sock", cfg.SocketPath())

	cfg.Agent.Socket = "/tmp/other.sock"
	assert.Equal(t, "/tmp/other.sock", cfg.SocketPath())
}
