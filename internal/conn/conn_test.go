package conn

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentmux/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubHandler struct {
	calls []wire.Request
}

func (h *stubHandler) Handle(sessionLocalID int, req wire.Request) wire.Response {
	h.calls = append(h.calls, req)
	result, _ := json.Marshal(map[string]any{"ok": true})
	return wire.Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func newTestConnection(events chan Event, handler RequestHandler) *Connection {
	c := New(7, events, handler, testLogger())
	c.writeCh = make(chan []byte, 8)
	return c
}

func TestHandleNotificationSessionUpdate(t *testing.T) {
	events := make(chan Event, 4)
	c := newTestConnection(events, nil)

	line := []byte(`{"jsonrpc":"2.0","method":"session/update","params":{"sessionId":"s-1","update":{"sessionUpdate":"agent_message_chunk","content":{"text":"hi"}}}}`)
	c.handleLine(line, 1)

	ev := <-events
	assert.Equal(t, EventUpdate, ev.Kind)
	assert.Equal(t, 7, ev.SessionLocalID)
	require.NotNil(t, ev.Update.Update.AgentMessageChunk)
	assert.Equal(t, "hi", ev.Update.Update.AgentMessageChunk.Text)
}

func TestHandleInboundPermissionRequest(t *testing.T) {
	events := make(chan Event, 4)
	c := newTestConnection(events, nil)

	line := []byte(`{"jsonrpc":"2.0","id":9,"method":"session/request_permission","params":{"sessionId":"s-1","toolCall":{"toolCallId":"t1","title":"Write"},"options":[{"optionId":"a","name":"Allow","kind":"allow_once"}]}}`)
	c.handleLine(line, 1)

	ev := <-events
	assert.Equal(t, EventPermissionRequest, ev.Kind)
	assert.Equal(t, uint64(9), ev.RequestID)
	assert.Equal(t, "t1", ev.ToolCall.ToolCallID)
}

func TestHandleInboundRequestDelegatesToHandler(t *testing.T) {
	events := make(chan Event, 4)
	handler := &stubHandler{}
	c := newTestConnection(events, handler)

	req := wire.Request{JSONRPC: "2.0", ID: 3, Method: "fs/read_text_file", Params: json.RawMessage(`{"sessionId":"s-1","path":"/tmp/x"}`)}
	c.handleInboundRequest(req, 1)

	require.Len(t, handler.calls, 1)
	assert.Equal(t, "fs/read_text_file", handler.calls[0].Method)

	select {
	case line := <-c.writeCh:
		var resp wire.Response
		require.NoError(t, json.Unmarshal(line, &resp))
		assert.Equal(t, uint64(3), resp.ID)
	default:
		t.Fatal("expected a response to be enqueued")
	}
}

func TestCompleteRequestUnknownIDDropped(t *testing.T) {
	events := make(chan Event, 1)
	c := newTestConnection(events, nil)
	c.completeRequest(wire.Response{ID: 42})
	select {
	case <-events:
		t.Fatal("unknown id should not emit an event")
	default:
	}
}

func TestPendingTableDrainOnTeardown(t *testing.T) {
	events := make(chan Event, 4)
	c := newTestConnection(events, nil)
	c.generation = 1

	slot := &pendingSlot{resultCh: make(chan wire.Response, 1)}
	c.pending.Store(uint64(5), slot)

	c.drainPending()

	resp := <-slot.resultCh
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "connection closed")
}

func TestEnqueueFailsWhenClosed(t *testing.T) {
	events := make(chan Event, 1)
	c := newTestConnection(events, nil)
	c.writeCh = nil
	err := c.enqueue([]byte("x"))
	assert.Error(t, err)
}
