// Package host implements the inbound ACP request surface advertised
// during initialize: filesystem access and ephemeral terminals.
package host

import (
	"encoding/json"
	"log/slog"

	"agentmux/internal/conn"
	"agentmux/internal/wire"
)

// PolicyProvider answers whether a given session may perform a
// filesystem operation outside an explicit permission grant, based on
// the session's cwd and current permission mode.
type PolicyProvider interface {
	// AllowsPath reports whether localID's session permits touching path
	// without a fresh permission prompt (inside cwd and mode allows it).
	AllowsPath(localID int, path string) bool

	// AllowsTerminal reports whether localID's session permits spawning
	// command without a fresh permission prompt.
	AllowsTerminal(localID int, command string) bool
}

// Handler answers fs/* and terminal/* requests. It implements
// conn.RequestHandler so a Connection can hand it inbound requests
// directly.
type Handler struct {
	policy    PolicyProvider
	logger    *slog.Logger
	terminals *terminalTable
	events    chan<- conn.Event
}

func New(policy PolicyProvider, logger *slog.Logger, events chan<- conn.Event) *Handler {
	return &Handler{policy: policy, logger: logger, terminals: newTerminalTable(), events: events}
}

var _ conn.RequestHandler = (*Handler)(nil)

// Handle dispatches one inbound request to its method-specific handler.
// Every branch returns exactly one response, per the Host Handler
// contract.
func (h *Handler) Handle(sessionLocalID int, req wire.Request) wire.Response {
	switch req.Method {
	case "fs/read_text_file":
		return h.handleReadTextFile(sessionLocalID, req)
	case "fs/write_text_file":
		return h.handleWriteTextFile(sessionLocalID, req)
	case "terminal/create":
		return h.handleTerminalCreate(sessionLocalID, req)
	case "terminal/output":
		return h.handleTerminalOutput(req)
	case "terminal/write":
		return h.handleTerminalWrite(req)
	case "terminal/wait_for_exit":
		return h.handleTerminalWait(req)
	case "terminal/kill":
		return h.handleTerminalKill(req)
	case "terminal/release":
		return h.handleTerminalRelease(req)
	default:
		return wire.NewErrorResponse(req.ID, wire.CodeMethodNotFound, "method not found: "+req.Method)
	}
}

func errorResult(id uint64, code int, kind, message string) wire.Response {
	data, _ := json.Marshal(map[string]string{"kind": kind})
	return wire.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &wire.RPCError{Code: code, Message: message, Data: data},
	}
}
