package host

import (
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"agentmux/internal/wire"
)

func waitTimeout(timeoutMs *uint64) <-chan time.Time {
	ms := uint64(30000)
	if timeoutMs != nil {
		ms = *timeoutMs
	}
	return time.After(time.Duration(ms) * time.Millisecond)
}

// terminal is one ephemeral shell session spawned on behalf of an agent.
// Output accumulates in a bounded ring so a runaway command can't exhaust
// memory; only the tail up to OutputByteLimit (1 MiB when the request
// gives none) is kept.
type terminal struct {
	mu       sync.Mutex
	sessionLocalID int
	cmd      *exec.Cmd
	pty      fileCloser
	output   []byte
	byteLimit int
	exitCode *int
	done     chan struct{}
}

type fileCloser interface {
	Close() error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

type terminalTable struct {
	mu   sync.Mutex
	byID map[string]*terminal
}

func newTerminalTable() *terminalTable {
	return &terminalTable{byID: make(map[string]*terminal)}
}

func (t *terminalTable) nextID() string {
	return "term_" + uuid.New().String()
}

func (t *terminalTable) get(id string) *terminal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byID[id]
}

func (t *terminalTable) put(id string, term *terminal) {
	t.mu.Lock()
	t.byID[id] = term
	t.mu.Unlock()
}

func (t *terminalTable) remove(id string) {
	t.mu.Lock()
	delete(t.byID, id)
	t.mu.Unlock()
}

// killSession kills every terminal owned by localID, called when a
// session transitions to Killed or Crashed.
func (t *terminalTable) killSession(localID int) {
	t.mu.Lock()
	var victims []*terminal
	for _, term := range t.byID {
		if term.sessionLocalID == localID {
			victims = append(victims, term)
		}
	}
	t.mu.Unlock()
	for _, term := range victims {
		term.kill()
	}
}

func (term *terminal) kill() {
	term.mu.Lock()
	cmd := term.cmd
	term.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func (term *terminal) appendOutput(b []byte) {
	term.mu.Lock()
	term.output = append(term.output, b...)
	if term.byteLimit > 0 && len(term.output) > term.byteLimit {
		term.output = term.output[len(term.output)-term.byteLimit:]
	}
	term.mu.Unlock()
}

func (term *terminal) snapshot() (string, *int) {
	term.mu.Lock()
	defer term.mu.Unlock()
	return string(term.output), term.exitCode
}

func (h *Handler) handleTerminalCreate(sessionLocalID int, req wire.Request) wire.Response {
	params, err := wire.ParseTerminalCreate(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	if !h.policy.AllowsTerminal(sessionLocalID, params.Command) {
		return errorResult(req.ID, wire.CodeApplication, "permission_denied", "permission required to run "+params.Command)
	}

	id := h.terminals.nextID()
	term := &terminal{sessionLocalID: sessionLocalID, byteLimit: 1 << 20, done: make(chan struct{})}
	if params.OutputByteLimit != nil {
		term.byteLimit = *params.OutputByteLimit
	}
	h.terminals.put(id, term)

	cmd := exec.Command(params.Command, params.Args...)
	if params.Cwd != nil {
		cmd.Dir = *params.Cwd
	}
	for _, e := range params.Env {
		cmd.Env = append(cmd.Env, e.Name+"="+e.Value)
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		h.terminals.remove(id)
		return errorResult(req.ID, wire.CodeApplication, "io_error", "failed to start terminal: "+err.Error())
	}
	term.cmd = cmd
	term.pty = ptmx

	go h.pumpTerminal(term, ptmx)

	resp, err := wire.NewResultResponse(req.ID, wire.TerminalCreateResult{TerminalID: id})
	if err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", err.Error())
	}
	return resp
}

// pumpTerminal copies the pty's output into the terminal's bounded
// buffer until the command exits, the same read-to-buffer shape as a
// remote-terminal relay, just writing to a snapshot buffer instead of a
// websocket.
func (h *Handler) pumpTerminal(term *terminal, ptmx fileCloser) {
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			term.appendOutput(buf[:n])
		}
		if err != nil {
			break
		}
	}
	_ = ptmx.Close()

	err := term.cmd.Wait()
	code := exitCodeOf(err)
	term.mu.Lock()
	term.exitCode = &code
	term.mu.Unlock()
	close(term.done)
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func (h *Handler) handleTerminalOutput(req wire.Request) wire.Response {
	params, err := wire.ParseTerminalOutput(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	term := h.terminals.get(params.TerminalID)
	if term == nil {
		return errorResult(req.ID, wire.CodeApplication, "not_found", "terminal not found")
	}
	output, exitCode := term.snapshot()
	resp, err := wire.NewResultResponse(req.ID, wire.TerminalOutputResult{Output: output, ExitCode: exitCode})
	if err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", err.Error())
	}
	return resp
}

func (h *Handler) handleTerminalWrite(req wire.Request) wire.Response {
	params, err := wire.ParseTerminalWrite(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	term := h.terminals.get(params.TerminalID)
	if term == nil {
		return errorResult(req.ID, wire.CodeApplication, "not_found", "terminal not found")
	}
	if _, err := term.pty.Write([]byte(params.Data)); err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", err.Error())
	}
	resp, _ := wire.NewResultResponse(req.ID, struct{}{})
	return resp
}

// handleTerminalWait polls the terminal's done channel so the calling
// goroutine (always a dedicated one per inbound request, see Connection)
// can block here without stalling the reader loop.
func (h *Handler) handleTerminalWait(req wire.Request) wire.Response {
	params, err := wire.ParseTerminalWait(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	term := h.terminals.get(params.TerminalID)
	if term == nil {
		return errorResult(req.ID, wire.CodeApplication, "not_found", "terminal not found")
	}

	timeout := waitTimeout(params.TimeoutMs)
	select {
	case <-term.done:
		_, exitCode := term.snapshot()
		resp, _ := wire.NewResultResponse(req.ID, wire.TerminalWaitResult{ExitCode: exitCode, TimedOut: false})
		return resp
	case <-timeout:
		resp, _ := wire.NewResultResponse(req.ID, wire.TerminalWaitResult{ExitCode: nil, TimedOut: true})
		return resp
	}
}

func (h *Handler) handleTerminalKill(req wire.Request) wire.Response {
	params, err := wire.ParseTerminalKill(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	if term := h.terminals.get(params.TerminalID); term != nil {
		term.kill()
	}
	resp, _ := wire.NewResultResponse(req.ID, struct{}{})
	return resp
}

// handleTerminalRelease drops bookkeeping immediately rather than
// waiting for the process to exit: the process is reaped asynchronously
// by pumpTerminal's own goroutine regardless.
func (h *Handler) handleTerminalRelease(req wire.Request) wire.Response {
	params, err := wire.ParseTerminalKill(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	h.terminals.remove(params.TerminalID)
	resp, _ := wire.NewResultResponse(req.ID, struct{}{})
	return resp
}

// KillSessionTerminals kills every terminal owned by localID; the
// dispatcher calls this when a session transitions to Killed or Crashed.
func (h *Handler) KillSessionTerminals(localID int) {
	h.terminals.killSession(localID)
}
