package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentmux/internal/agentkind"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hjson"))
	require.NoError(t, err)
	assert.Equal(t, Default().DefaultAgent, cfg.DefaultAgent)
}

func TestLoadHJSONOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hjson")
	content := `{
  theme: dark
  default_agent: gemini-cli
  mcp_servers: [
    {
      name: filesystem
      command: npx
      args: ["-y", "@modelcontextprotocol/server-filesystem"]
    }
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "gemini-cli", cfg.DefaultAgent)
	require.Len(t, cfg.McpServers, 1)
	assert.Equal(t, "filesystem", cfg.McpServers[0].Name)
}

func TestApplyEnvOverridesFileAndDefaults(t *testing.T) {
	cfg := Default()
	t.Setenv("AGENTMUX_THEME", "light")
	ApplyEnv(&cfg)
	assert.Equal(t, "light", cfg.Theme)
}

func TestAgentKindFallsBackOnUnknownValue(t *testing.T) {
	cfg := Default()
	cfg.DefaultAgent = "not-a-real-agent"
	assert.Equal(t, agentkind.ClaudeCode, cfg.AgentKind())
}

func TestAgentKindHonorsValidValue(t *testing.T) {
	cfg := Default()
	cfg.DefaultAgent = string(agentkind.GeminiCLI)
	assert.Equal(t, agentkind.GeminiCLI, cfg.AgentKind())
}

func TestNotificationsOverrideFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hjson")
	content := `{
  notifications: {
    enabled: true
    idle_delay_secs: 10
    dedupe_interval_secs: 60
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Notifications.IdleDelaySecs)

	notifyCfg := cfg.Notifications.ToNotifyConfig()
	assert.True(t, notifyCfg.Enabled)
	assert.Equal(t, 60*time.Second, notifyCfg.DedupeInterval)
}
