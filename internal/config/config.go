// Package config loads agentmux's configuration with CLI > env > file >
// default precedence, following the same flag.FlagSet-plus-envOr shape
// the original tri-chat entry point uses, with an HJSON file layer
// underneath for the settings worth persisting across runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hjson/hjson-go/v4"

	"agentmux/internal/agentkind"
	"agentmux/internal/notify"
	"agentmux/internal/wire"
)

// Notifications holds the notifications.{enabled,idle_delay_secs,
// dedupe_interval_secs} config keys.
type Notifications struct {
	Enabled             bool `json:"enabled"`
	IdleDelaySecs       int  `json:"idle_delay_secs"`
	DedupeIntervalSecs  int  `json:"dedupe_interval_secs"`
}

// ToNotifyConfig converts the on-disk seconds-based fields to the
// time.Duration shape internal/notify works with.
func (n Notifications) ToNotifyConfig() notify.Config {
	cfg := notify.DefaultConfig()
	cfg.Enabled = n.Enabled
	if n.IdleDelaySecs > 0 {
		cfg.IdleDelay = time.Duration(n.IdleDelaySecs) * time.Second
	}
	if n.DedupeIntervalSecs > 0 {
		cfg.DedupeInterval = time.Duration(n.DedupeIntervalSecs) * time.Second
	}
	return cfg
}

// McpServer mirrors wire.McpServer plus the name servers are keyed by in
// config; agentmux passes Command/Args/Env straight through to
// session/new.
type McpServer struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

func (m McpServer) ToWire() wire.McpServer {
	return wire.McpServer{Name: m.Name, Command: m.Command, Args: m.Args, Env: m.Env}
}

// Config is the full set of settings, populated from defaults, then the
// config file, then environment variables, then CLI flags, each later
// layer overriding the fields it sets to a non-zero value.
type Config struct {
	WorktreeDir   string      `json:"worktree_dir"`
	DefaultAgent  string      `json:"default_agent"`
	Theme         string      `json:"theme"`
	LogDir        string      `json:"logDir"`
	LogLevel      string      `json:"logLevel"`
	ClientVersion string      `json:"clientVersion"`
	McpServers    []McpServer `json:"mcp_servers"`
	Notifications Notifications `json:"notifications"`
}

// Default returns the configuration used when no file, environment
// variable, or flag supplies a value.
func Default() Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return Config{
		WorktreeDir:   filepath.Join(home, ".agentmux", "worktrees"),
		DefaultAgent:  string(agentkind.ClaudeCode),
		Theme:         "auto",
		LogDir:        filepath.Join(home, ".agentmux", "logs"),
		LogLevel:      "info",
		ClientVersion: "0.1.0",
		Notifications: Notifications{Enabled: true, IdleDelaySecs: 5, DedupeIntervalSecs: 30},
	}
}

// ConfigPath returns the default config file location, honoring
// XDG_CONFIG_HOME the way dirs::config_dir() does in the original.
func ConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentmux", "config.hjson")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "agentmux", "config.hjson")
}

// Load reads path, falling back silently to defaults if it doesn't
// exist, and applies it on top of Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse hjson: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return cfg, fmt.Errorf("re-encode config: %w", err)
	}

	var fileCfg Config
	if err := json.Unmarshal(jsonData, &fileCfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	applyOverride(&cfg, fileCfg)
	return cfg, nil
}

// applyOverride copies every non-zero field of src onto dst.
func applyOverride(dst *Config, src Config) {
	if src.WorktreeDir != "" {
		dst.WorktreeDir = src.WorktreeDir
	}
	if src.DefaultAgent != "" {
		dst.DefaultAgent = src.DefaultAgent
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.LogDir != "" {
		dst.LogDir = src.LogDir
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.ClientVersion != "" {
		dst.ClientVersion = src.ClientVersion
	}
	if len(src.McpServers) > 0 {
		dst.McpServers = src.McpServers
	}
	if src.Notifications != (Notifications{}) {
		dst.Notifications = src.Notifications
	}
}

// ApplyEnv overlays the AGENTMUX_* environment variables, the Go
// equivalent of the original tri-chat binary's envOr helpers.
func ApplyEnv(cfg *Config) {
	if v := envOr("AGENTMUX_WORKTREE_DIR", ""); v != "" {
		cfg.WorktreeDir = v
	}
	if v := envOr("AGENTMUX_DEFAULT_AGENT", ""); v != "" {
		cfg.DefaultAgent = v
	}
	if v := envOr("AGENTMUX_THEME", ""); v != "" {
		cfg.Theme = v
	}
	if v := envOr("AGENTMUX_LOG_DIR", ""); v != "" {
		cfg.LogDir = v
	}
	if v := envOr("AGENTMUX_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// AgentKind resolves DefaultAgent to an agentkind.Kind, falling back to
// Claude Code on an unrecognized or empty value rather than failing
// startup over a config typo.
func (c Config) AgentKind() agentkind.Kind {
	k, err := agentkind.Parse(c.DefaultAgent)
	if err != nil {
		return agentkind.ClaudeCode
	}
	return k
}
