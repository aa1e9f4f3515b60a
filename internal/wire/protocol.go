package wire

import "encoding/json"

// InitializeParams is the client->agent handshake request body.
type InitializeParams struct {
	ProtocolVersion   int                `json:"protocolVersion"`
	ClientCapabilities ClientCapabilities `json:"clientCapabilities"`
	ClientInfo        ClientInfo         `json:"clientInfo"`
}

type ClientCapabilities struct {
	FS       FSCapabilities `json:"fs"`
	Terminal bool           `json:"terminal"`
}

type FSCapabilities struct {
	ReadTextFile  bool `json:"readTextFile"`
	WriteTextFile bool `json:"writeTextFile"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

type InitializeResult struct {
	ProtocolVersion    int             `json:"protocolVersion"`
	AgentCapabilities  json.RawMessage `json:"agentCapabilities,omitempty"`
	AgentInfo          *AgentInfo      `json:"agentInfo,omitempty"`
}

type AgentInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// McpServer describes a single MCP server forwarded verbatim into session/new.
type McpServer struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

type NewSessionParams struct {
	Cwd        string      `json:"cwd"`
	McpServers []McpServer `json:"mcpServers"`
}

type NewSessionResult struct {
	SessionID string      `json:"sessionId"`
	Models    *ModelsState `json:"models,omitempty"`
}

// ModelsState describes the models an agent offers for a session,
// consumed from session/new's result.
type ModelsState struct {
	Available []ModelInfo `json:"available"`
	CurrentID string      `json:"current"`
}

type ModelInfo struct {
	ModelID string `json:"modelId"`
	Name    string `json:"name"`
}

type SetModelParams struct {
	SessionID string `json:"sessionId"`
	ModelID   string `json:"modelId"`
}

// ContentBlock is one element of a session/prompt's prompt array.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

func TextBlock(text string) ContentBlock { return ContentBlock{Type: "text", Text: text} }

func ImageBlock(mimeType, data string) ContentBlock {
	return ContentBlock{Type: "image", MimeType: mimeType, Data: data}
}

type PromptParams struct {
	SessionID string         `json:"sessionId"`
	Prompt    []ContentBlock `json:"prompt"`
}

// StopReason discriminates how a prompt turn ended.
type StopReason string

const (
	StopEndTurn    StopReason = "end_turn"
	StopMaxTokens  StopReason = "max_tokens"
	StopCancelled  StopReason = "cancelled"
	StopRefusal    StopReason = "refusal"
	StopUnknown    StopReason = "unknown"
)

func ParseStopReason(s string) StopReason {
	switch StopReason(s) {
	case StopEndTurn, StopMaxTokens, StopCancelled, StopRefusal:
		return StopReason(s)
	default:
		return StopUnknown
	}
}

type PromptResult struct {
	StopReason StopReason `json:"stopReason"`
}

// CancelParams is sent as a best-effort notification on Clear; the
// protocol's cancellation support is a draft and agents may ignore it,
// but sending it costs nothing.
type CancelParams struct {
	ID uint64 `json:"id"`
}
