package conn

import "agentmux/internal/wire"

// EventKind discriminates the closed set of events an AgentConnection
// emits on its event channel.
type EventKind int

const (
	EventInitialized EventKind = iota
	EventSessionCreated
	EventUpdate
	EventPermissionRequest
	EventAskUserRequest
	EventPromptComplete
	EventFileWritten
	EventProtocolError
	EventDisconnected
)

// Event is the closed tagged union forwarded on the manager's event
// channel, mirroring the connection's AgentEvent enum but carrying the
// local session id every payload needs to be routed to.
type Event struct {
	Kind        EventKind
	SessionLocalID int
	Generation  int

	AgentInfo         *wire.AgentInfo
	AgentCapabilities []byte

	AgentSessionID string
	Models         *wire.ModelsState

	Update wire.SessionUpdateEnvelope

	RequestID  uint64
	ToolCall   wire.ToolCallRef
	Options    []wire.PermissionOption

	Question      string
	AskOptions    []wire.AskUserOption
	MultiSelect   bool

	StopReason wire.StopReason

	FilePath string
	FileDiff string

	ErrorMessage string

	ExitErr error
}
