package dispatch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentmux/internal/agentkind"
	"agentmux/internal/conn"
	"agentmux/internal/manager"
	"agentmux/internal/notify"
	"agentmux/internal/session"
	"agentmux/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEntry builds a session far enough along (Prompting, with an empty
// transcript) to receive the events under test, without spawning a real
// connection.
func newTestEntry(t *testing.T, mode session.PermissionMode) *manager.Entry {
	t.Helper()
	sess := session.New(1, agentkind.ClaudeCode, "/tmp/proj", "proj", false)
	sess.PermissionMode = mode
	require.NoError(t, sess.OnChildSpawned())
	require.NoError(t, sess.OnInitializeOK())
	require.NoError(t, sess.OnSessionNewOK("agent-session-1"))
	require.NoError(t, sess.OnPromptSubmitted("hello"))
	sess.Transcript = session.Transcript{}
	return &manager.Entry{Session: sess, Conn: conn.New(1, make(chan conn.Event, 4), nil, testLogger())}
}

func TestApplyUpdateAppendsAgentMessageChunk(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	env := wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
		Tag:               "agent_message_chunk",
		AgentMessageChunk: &wire.AgentMessageChunk{Text: "hi there"},
	}}
	d.applyUpdate(e, env)

	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, session.EntryAgentMessageChunk, e.Session.Transcript.Entries[0].Kind)
}

func TestApplyUpdateToolCallThenUpdateIsIdempotent(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.applyUpdate(e, wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
		Tag: "tool_call",
		ToolCall: &wire.ToolCallUpdate{
			ToolCallID: "tc1", Title: "Read file", Status: "pending",
		},
	}})
	assert.Equal(t, "tc1", e.Session.ActiveToolCallID)

	d.applyUpdate(e, wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
		Tag:            "tool_call_update",
		ToolCallUpdate: &wire.ToolCallUpdate{ToolCallID: "tc1", Status: "completed"},
	}})

	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, "", e.Session.ActiveToolCallID)
}

func TestApplyUpdateUnknownToolCallUpdateLeavesActiveAlone(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)
	e.Session.ActiveToolCallID = "tc1"

	d.applyUpdate(e, wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
		Tag:            "tool_call_update",
		ToolCallUpdate: &wire.ToolCallUpdate{ToolCallID: "does-not-exist", Status: "completed"},
	}})

	assert.Equal(t, "tc1", e.Session.ActiveToolCallID)
	assert.Equal(t, 0, e.Session.Transcript.Len())
}

func TestHandlePermissionRequestDefaultModeSurfacesPrompt(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Edit file"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})

	require.NotNil(t, e.Session.PendingPermission)
	assert.Equal(t, session.AwaitingPermission, e.Session.State)
}

func TestHandlePermissionRequestBypassAutoAllows(t *testing.T) {
	e := newTestEntry(t, session.ModeBypassPermissions)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Run shell command"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})

	assert.Nil(t, e.Session.PendingPermission)
	assert.Equal(t, session.Prompting, e.Session.State)
	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, session.EntryPermissionResolved, e.Session.Transcript.Entries[0].Kind)
}

func TestHandlePermissionRequestAcceptEditsOnlyAutoAllowsEdits(t *testing.T) {
	e := newTestEntry(t, session.ModeAcceptEdits)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Run shell command"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})
	assert.NotNil(t, e.Session.PendingPermission, "non-edit tool must still surface a prompt")
}

func TestHandlePermissionRequestAcceptEditsAutoAllowsEdit(t *testing.T) {
	e := newTestEntry(t, session.ModeAcceptEdits)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Write file"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})
	assert.Nil(t, e.Session.PendingPermission)
}

func TestHandlePermissionRequestPlanModeRejectsMutating(t *testing.T) {
	e := newTestEntry(t, session.ModePlan)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Delete file"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})

	assert.Nil(t, e.Session.PendingPermission)
	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, "reject", e.Session.Transcript.Entries[0].PermissionDecision)
}

func TestHandlePermissionRequestPlanModeAllowsReadOnly(t *testing.T) {
	e := newTestEntry(t, session.ModePlan)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 7,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "Search files"},
		Options: []wire.PermissionOption{
			{OptionID: "allow", Kind: wire.AllowOnce},
			{OptionID: "reject", Kind: wire.RejectOnce},
		},
	})

	assert.Nil(t, e.Session.PendingPermission)
	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, "allow", e.Session.Transcript.Entries[0].PermissionDecision)
}

func TestHandleDisconnectedCrashesUnlessAlreadyTerminal(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handleDisconnected(e, conn.Event{})
	assert.Equal(t, session.Crashed, e.Session.State)
}

func TestHandleDisconnectedNoOpAfterUserKill(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	require.NoError(t, e.Session.OnUserKill())
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.handleDisconnected(e, conn.Event{})
	assert.Equal(t, session.Killed, e.Session.State)
}

func TestApplyStopReasonRefusalRecordsError(t *testing.T) {
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), nil)

	d.applyStopReason(e, wire.StopRefusal)

	assert.Equal(t, session.Idle, e.Session.State)
	require.Equal(t, 1, e.Session.Transcript.Len())
	assert.Equal(t, session.EntryError, e.Session.Transcript.Entries[0].Kind)
}

func TestRunExitsOnQuit(t *testing.T) {
	m := manager.New(nil, testLogger(), "0.0.0", 4)
	d := New(m, nil, testLogger(), nil)
	d.Submit(Action{Kind: ActQuit})
	code := d.Run(context.Background())
	assert.Equal(t, 0, code)
}

// TestSnapshotServicedWhileRunLoopActive exercises the reply-channel
// mechanism Snapshot() uses instead of reading dispatcher fields
// directly: it must return a consistent view without deadlocking even
// while Run is actively selecting on the same loop.
func TestSnapshotServicedWhileRunLoopActive(t *testing.T) {
	m := manager.New(nil, testLogger(), "0.0.0", 4)
	d := New(m, nil, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- d.Run(ctx) }()

	for i := 0; i < 50; i++ {
		snap := d.Snapshot()
		assert.Equal(t, 0, len(snap.Entries))
	}

	cancel()
	<-done
}

// TestHandlePermissionRequestDefaultModeNotifies checks that surfacing a
// permission prompt in default mode also triggers the configured
// notifier, not just handlePermissionRequest's existing prompt-surfacing
// behavior (see TestHandlePermissionRequestDefaultModeSurfacesPrompt).
func TestHandlePermissionRequestDefaultModeNotifies(t *testing.T) {
	sender := &recordingSender{}
	notifier := notify.NewManager(notify.Config{Enabled: true, DedupeInterval: time.Hour}, sender)
	e := newTestEntry(t, session.ModeDefault)
	d := New(manager.New(nil, testLogger(), "0.0.0", 4), nil, testLogger(), notifier)

	d.handlePermissionRequest(e, conn.Event{
		RequestID: 1,
		ToolCall:  wire.ToolCallRef{ToolCallID: "tc1", Title: "write file"},
		Options:   []wire.PermissionOption{{OptionID: "allow", Kind: wire.AllowOnce}},
	})

	assert.Equal(t, 1, sender.calls)
}

type recordingSender struct{ calls int }

func (r *recordingSender) Send(title, body string) error {
	r.calls++
	return nil
}

// TestHandleEventDropsStaleGeneration exercises the Clear-then-stale-event
// case: an event tagged with the connection's pre-Clear generation must
// not be applied once Clear has respawned the connection under a new
// generation, even though both events target the same session.
func TestHandleEventDropsStaleGeneration(t *testing.T) {
	m := manager.New(nil, testLogger(), "0.0.0", 4)
	ctx := context.Background()

	localID, _ := m.Spawn(ctx, agentkind.ClaudeCode, "/tmp/proj", nil)
	e := m.ByLocalID(localID)
	require.NotNil(t, e)
	staleGen := e.Conn.Generation()

	_ = m.Clear(ctx, localID)
	currentGen := e.Conn.Generation()
	require.Greater(t, currentGen, staleGen)

	d := New(m, nil, testLogger(), nil)

	d.handleEvent(ctx, conn.Event{
		SessionLocalID: localID,
		Generation:     staleGen,
		Kind:           conn.EventUpdate,
		Update: wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
			Tag:               "agent_message_chunk",
			AgentMessageChunk: &wire.AgentMessageChunk{Text: "from the old child"},
		}},
	})
	assert.Equal(t, 0, e.Session.Transcript.Len())

	d.handleEvent(ctx, conn.Event{
		SessionLocalID: localID,
		Generation:     currentGen,
		Kind:           conn.EventUpdate,
		Update: wire.SessionUpdateEnvelope{Update: wire.SessionUpdate{
			Tag:               "agent_message_chunk",
			AgentMessageChunk: &wire.AgentMessageChunk{Text: "from the new child"},
		}},
	})
	require.Equal(t, 1, e.Session.Transcript.Len())
}
