package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"agentmux/internal/agentkind"
	"agentmux/internal/clipboard"
	"agentmux/internal/config"
	"agentmux/internal/dispatch"
	"agentmux/internal/gitinfo"
	"agentmux/internal/host"
	"agentmux/internal/logsink"
	"agentmux/internal/manager"
	"agentmux/internal/notify"
	"agentmux/internal/tui"
	"agentmux/internal/wire"
)

type cliFlags struct {
	configPath string
	agent      string
	cwd        string
	logDir     string
	altScreen  bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", config.ConfigPath(), "Path to config.hjson")
	flag.StringVar(&f.agent, "agent", "", "Agent kind to spawn on startup (claude-code|gemini-cli)")
	flag.StringVar(&f.cwd, "cwd", ".", "Working directory for the first session")
	flag.StringVar(&f.logDir, "log-dir", "", "Directory for the run's JSON-RPC log file")
	flag.BoolVar(&f.altScreen, "alt-screen", true, "Use the terminal's alternate screen buffer")
	flag.Parse()
	return f
}

// applyFlags overrides cfg with any flag the user actually set, so a flag
// left at its zero-value default never clobbers a value that came from
// the env or config file layers.
func applyFlags(cfg config.Config, f cliFlags) config.Config {
	if f.agent != "" {
		cfg.DefaultAgent = f.agent
	}
	if f.logDir != "" {
		cfg.LogDir = f.logDir
	}
	return cfg
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentmux: config load failed: %v\n", err)
		return 1
	}
	config.ApplyEnv(&cfg)
	cfg = applyFlags(cfg, flags)

	sink, err := logsink.Open(cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentmux: log open failed: %v\n", err)
		return 1
	}
	defer sink.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	kind, err := agentkind.Parse(cfg.DefaultAgent)
	if err != nil {
		kind = agentkind.ClaudeCode
	}

	mgr := manager.New(nil, logger, cfg.ClientVersion, 64)
	mgr.SetRawSink(sink)
	mgr.SetGitInfo(gitinfo.NewShellReader(), cfg.WorktreeDir)

	hostHandler := host.New(mgr, logger, mgr.EventSink())
	mgr.SetHandler(hostHandler)

	notifier := notify.NewManager(cfg.Notifications.ToNotifyConfig(), notify.NewSystemSender())

	disp := dispatch.New(mgr, hostHandler, logger, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcpServers := make([]wire.McpServer, len(cfg.McpServers))
	for i, s := range cfg.McpServers {
		mcpServers[i] = s.ToWire()
	}
	if _, err := mgr.Spawn(ctx, kind, flags.cwd, mcpServers); err != nil {
		logger.Warn("initial spawn failed", "err", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	dispDone := make(chan int, 1)
	go func() { dispDone <- disp.Run(ctx) }()

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if flags.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(disp, clipboard.NewSystemWriter()), opts...)
	_, runErr := program.Run()

	cancel()
	<-dispDone

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "agentmux: fatal error: %v\n", runErr)
		return 1
	}
	return 0
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
