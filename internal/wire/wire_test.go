package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Kind
	}{
		{"request", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, KindRequest},
		{"notification", `{"jsonrpc":"2.0","method":"session/update","params":{}}`, KindNotification},
		{"response-result", `{"jsonrpc":"2.0","id":1,"result":{}}`, KindResponse},
		{"response-error", `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"nope"}}`, KindResponse},
		{"not-json", `not json at all`, KindUnknown},
		{"array", `[1,2,3]`, KindUnknown},
		{"bare-id", `{"jsonrpc":"2.0","id":1}`, KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Sniff([]byte(c.line)))
		})
	}
}

func TestMethodAndSessionUpdateTag(t *testing.T) {
	line := []byte(`{"jsonrpc":"2.0","method":"session/update","params":{"sessionId":"s1","update":{"sessionUpdate":"plan","entries":[]}}}`)
	assert.Equal(t, "session/update", Method(line))
	assert.Equal(t, "plan", SessionUpdateTag(line))
}

func TestParseSessionUpdateAgentMessageChunk(t *testing.T) {
	raw := json.RawMessage(`{"sessionId":"s1","update":{"sessionUpdate":"agent_message_chunk","content":{"text":"hello"}}}`)
	env, err := ParseSessionUpdate(raw)
	require.NoError(t, err)
	assert.Equal(t, "s1", env.SessionID)
	require.NotNil(t, env.Update.AgentMessageChunk)
	assert.Equal(t, "hello", env.Update.AgentMessageChunk.Text)
}

func TestParseSessionUpdateToolCall(t *testing.T) {
	raw := json.RawMessage(`{"sessionId":"s1","update":{"sessionUpdate":"tool_call","toolCallId":"tc1","title":"Edit file","status":"pending"}}`)
	env, err := ParseSessionUpdate(raw)
	require.NoError(t, err)
	require.NotNil(t, env.Update.ToolCall)
	assert.Equal(t, "tc1", env.Update.ToolCall.ToolCallID)
	assert.Equal(t, "Edit file", env.Update.ToolCall.Title)
	assert.Equal(t, "pending", env.Update.ToolCall.Status)
}

func TestParseSessionUpdateUnknownTagPreservesRaw(t *testing.T) {
	raw := json.RawMessage(`{"sessionId":"s1","update":{"sessionUpdate":"some_future_variant","foo":"bar"}}`)
	env, err := ParseSessionUpdate(raw)
	require.NoError(t, err)
	assert.Equal(t, "some_future_variant", env.Update.Tag)
	assert.Nil(t, env.Update.AgentMessageChunk)
	assert.NotNil(t, env.Update.Raw)
}

func TestParsePermissionRequest(t *testing.T) {
	raw := json.RawMessage(`{
		"sessionId": "s1",
		"toolCall": {"toolCallId": "tc1", "title": "Write file"},
		"options": [
			{"optionId": "opt-allow", "name": "Allow", "kind": "allow_once"},
			{"optionId": "opt-reject", "name": "Reject", "kind": "reject_once"}
		]
	}`)
	req, err := ParsePermissionRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, "tc1", req.ToolCall.ToolCallID)
	require.Len(t, req.Options, 2)
	assert.True(t, req.Options[0].Kind.IsAllow())
	assert.True(t, req.Options[1].Kind.IsReject())
}

func TestPermissionResponseConstructors(t *testing.T) {
	assert.Equal(t, PermissionResponse{Outcome: "selected", OptionID: "opt-allow"}, SelectedPermission("opt-allow"))
	assert.Equal(t, PermissionResponse{Outcome: "cancelled"}, CancelledPermission())
}

func TestParseAskUserRequest(t *testing.T) {
	raw := json.RawMessage(`{
		"sessionId": "s1",
		"question": "Which branch?",
		"options": [{"optionId": "main", "label": "main"}],
		"multiSelect": false
	}`)
	req, err := ParseAskUserRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, "Which branch?", req.Question)
	require.Len(t, req.Options, 1)
	assert.False(t, req.MultiSelect)
}

func TestParseStopReason(t *testing.T) {
	assert.Equal(t, StopEndTurn, ParseStopReason("end_turn"))
	assert.Equal(t, StopRefusal, ParseStopReason("refusal"))
	assert.Equal(t, StopUnknown, ParseStopReason("something_new"))
}

func TestNewRequestMarshalsParams(t *testing.T) {
	req, err := NewRequest(7, "session/prompt", PromptParams{SessionID: "s1", Prompt: []ContentBlock{TextBlock("hi")}})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), req.ID)
	assert.JSONEq(t, `{"sessionId":"s1","prompt":[{"type":"text","text":"hi"}]}`, string(req.Params))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(3, CodeMethodNotFound, "unknown method")
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
	assert.EqualError(t, resp.Error, "jsonrpc error -32601: unknown method")
}

func TestParseFSReadTextFile(t *testing.T) {
	raw := json.RawMessage(`{"sessionId":"s1","path":"/tmp/a.go","line":3,"limit":10}`)
	p, err := ParseFSReadTextFile(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Line)
	assert.Equal(t, 3, *p.Line)
}

func TestParseTerminalCreate(t *testing.T) {
	raw := json.RawMessage(`{"sessionId":"s1","command":"npm","args":["test"]}`)
	p, err := ParseTerminalCreate(raw)
	require.NoError(t, err)
	assert.Equal(t, "npm", p.Command)
	assert.Equal(t, []string{"test"}, p.Args)
}
