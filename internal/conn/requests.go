package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agentmux/internal/wire"
)

const defaultRequestTimeout = 30 * time.Second

// Initialize performs the client->agent handshake.
func (c *Connection) Initialize(ctx context.Context, clientVersion string) (wire.InitializeResult, error) {
	params := wire.InitializeParams{
		ProtocolVersion: 1,
		ClientCapabilities: wire.ClientCapabilities{
			FS:       wire.FSCapabilities{ReadTextFile: true, WriteTextFile: true},
			Terminal: true,
		},
		ClientInfo: wire.ClientInfo{Name: "agentmux", Title: "agentmux", Version: clientVersion},
	}
	resp, err := c.SendRequest(ctx, "initialize", params, defaultRequestTimeout)
	if err != nil {
		return wire.InitializeResult{}, err
	}
	if resp.Error != nil {
		return wire.InitializeResult{}, resp.Error
	}
	var result wire.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return wire.InitializeResult{}, fmt.Errorf("decode initialize result: %w", err)
	}
	return result, nil
}

// NewSession sends session/new and returns the agent-assigned session id.
func (c *Connection) NewSession(ctx context.Context, cwd string, mcpServers []wire.McpServer) (wire.NewSessionResult, error) {
	params := wire.NewSessionParams{Cwd: cwd, McpServers: mcpServers}
	resp, err := c.SendRequest(ctx, "session/new", params, defaultRequestTimeout)
	if err != nil {
		return wire.NewSessionResult{}, err
	}
	if resp.Error != nil {
		return wire.NewSessionResult{}, resp.Error
	}
	var result wire.NewSessionResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return wire.NewSessionResult{}, fmt.Errorf("decode session/new result: %w", err)
	}
	return result, nil
}

// Prompt sends a session/prompt request and waits for its stop reason.
// There is no overall timeout here by design: a prompt turn may run for
// as long as the agent needs; cancellation is the user's Clear action.
func (c *Connection) Prompt(ctx context.Context, agentSessionID string, blocks []wire.ContentBlock) (wire.PromptResult, error) {
	params := wire.PromptParams{SessionID: agentSessionID, Prompt: blocks}
	resp, err := c.SendRequest(ctx, "session/prompt", params, 0)
	if err != nil {
		return wire.PromptResult{}, err
	}
	if resp.Error != nil {
		return wire.PromptResult{}, resp.Error
	}
	var result wire.PromptResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return wire.PromptResult{}, fmt.Errorf("decode session/prompt result: %w", err)
	}
	result.StopReason = wire.ParseStopReason(string(result.StopReason))
	return result, nil
}

// CancelPrompt sends a best-effort $/cancel_request notification. Agents
// are not required to honor it; the supported cancellation path for a
// user is Clear, which tears down and respawns the connection outright.
func (c *Connection) CancelPrompt(promptRequestID uint64) error {
	return c.SendNotification("$/cancel_request", wire.CancelParams{ID: promptRequestID})
}

// RespondPermission answers a pending session/request_permission.
func (c *Connection) RespondPermission(requestID uint64, resp wire.PermissionResponse) {
	r, err := wire.NewResultResponse(requestID, resp)
	if err != nil {
		c.logger.Error("marshal permission response", "err", err)
		return
	}
	c.writeResponse(r)
}

// RespondAskUser answers a pending session/ask_user.
func (c *Connection) RespondAskUser(requestID uint64, resp wire.AskUserResponse) {
	r, err := wire.NewResultResponse(requestID, resp)
	if err != nil {
		c.logger.Error("marshal ask_user response", "err", err)
		return
	}
	c.writeResponse(r)
}

// SetModel sends session/set_model.
func (c *Connection) SetModel(ctx context.Context, agentSessionID, modelID string) error {
	params := wire.SetModelParams{SessionID: agentSessionID, ModelID: modelID}
	resp, err := c.SendRequest(ctx, "session/set_model", params, defaultRequestTimeout)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}
