package manager

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentmux/internal/agentkind"
	"agentmux/internal/apperr"
	"agentmux/internal/conn"
	"agentmux/internal/session"
	"agentmux/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// addFakeEntry appends a session/connection pair to the manager without
// spawning a real subprocess, for exercising focus/selection/permission
// logic in isolation.
func addFakeEntry(m *Manager, kind agentkind.Kind, cwd string) *Entry {
	m.nextID++
	sess := session.New(m.nextID, kind, cwd, cwd, false)
	c := conn.New(m.nextID, m.events, m.handler, m.logger)
	e := &Entry{Session: sess, Conn: c}
	m.entries = append(m.entries, e)
	m.focused = len(m.entries) - 1
	return e
}

func TestFocusNextPrev(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	a := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	b := addFakeEntry(m, agentkind.GeminiCLI, "/tmp/b")

	assert.Equal(t, b, m.Focused())
	m.Prev()
	assert.Equal(t, a, m.Focused())
	m.Next()
	assert.Equal(t, b, m.Focused())
	assert.True(t, m.Focus(a.Session.LocalID))
	assert.Equal(t, a, m.Focused())
}

func TestByNumber(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	addFakeEntry(m, agentkind.ClaudeCode, "/tmp/b")

	assert.True(t, m.ByNumber(1))
	assert.Equal(t, 0, m.FocusedIndex())
	assert.False(t, m.ByNumber(99))
}

func TestSendRejectedWhenNotIdle(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.State = session.Prompting

	err := m.Send(nil, e.Session.LocalID, "hi")
	assert.Error(t, err)
}

func TestResolvePermissionRejectedUnlessAwaiting(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.State = session.Idle

	err := m.ResolvePermission(e.Session.LocalID, "a")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestResolvePermissionAppendsDecision(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")
	e.Session.State = session.Prompting
	require.NoError(t, e.Session.OnPermissionRequested(session.NewPendingPermission(5, wire.ToolCallRef{ToolCallID: "t1"}, []wire.PermissionOption{
		{OptionID: "a", Kind: wire.AllowOnce},
	})))

	require.NoError(t, m.ResolvePermission(e.Session.LocalID, "a"))
	assert.Equal(t, session.Prompting, e.Session.State)
	assert.Nil(t, e.Session.PendingPermission)
}

func TestCyclePermissionModeAndSort(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	e := addFakeEntry(m, agentkind.ClaudeCode, "/tmp/a")

	mode, err := m.CyclePermissionMode(e.Session.LocalID)
	require.NoError(t, err)
	assert.Equal(t, session.ModeAcceptEdits, mode)

	assert.Equal(t, SortByActivity, m.CycleSort())
	assert.Equal(t, SortByState, m.CycleSort())
	assert.Equal(t, SortByLabel, m.CycleSort())
}

func TestDuplicateRejectsUnknownSession(t *testing.T) {
	m := New(nil, testLogger(), "0.0.0", 8)
	_, err := m.Duplicate(nil, 999)
	assert.Error(t, err)
}
