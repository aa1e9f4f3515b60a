package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentmux/internal/agentkind"
	"agentmux/internal/session"
)

func TestAllowsTerminalDefaultModeDenies(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")

	assert.False(t, m.AllowsTerminal(e.Session.LocalID, "rm -rf /"))
}

func TestAllowsTerminalBypassAlwaysAllows(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.PermissionMode = session.ModeBypassPermissions

	assert.True(t, m.AllowsTerminal(e.Session.LocalID, "rm -rf /"))
}

func TestAllowsTerminalPlanModeRejectsMutatingCommand(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.PermissionMode = session.ModePlan

	assert.False(t, m.AllowsTerminal(e.Session.LocalID, "rm file.txt"))
	assert.True(t, m.AllowsTerminal(e.Session.LocalID, "grep -r foo ."))
}

func TestAllowsTerminalAcceptEditsStillDenies(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.PermissionMode = session.ModeAcceptEdits

	assert.False(t, m.AllowsTerminal(e.Session.LocalID, "ls"))
}

func TestAllowsTerminalUnknownSessionDenies(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	assert.False(t, m.AllowsTerminal(999, "ls"))
}
