// Package manager owns the ordered collection of sessions, the focused
// index, and the single event channel funnelling every connection's
// notifications and inbound requests to the dispatcher.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"agentmux/internal/agentkind"
	"agentmux/internal/apperr"
	"agentmux/internal/conn"
	"agentmux/internal/gitinfo"
	"agentmux/internal/session"
	"agentmux/internal/wire"
)

const killGracePeriod = 3 * time.Second

// Entry pairs a Session with the Connection driving it.
type Entry struct {
	Session *session.Session
	Conn    *conn.Connection
}

// Manager owns every session's lifecycle plus focus/selection state. All
// methods are expected to be called from the single dispatcher goroutine;
// it holds no internal lock because of that. Background work
// (handshakes, prompts) reports back exclusively through Events().
type Manager struct {
	entries       []*Entry
	focused       int
	sort          SortMode
	nextID        int
	events        chan conn.Event
	handler       conn.RequestHandler
	logger        *slog.Logger
	clientVersion string
	rawSink       rawSink
	git           gitinfo.Reader
	worktreeDir   string
}

// rawSink mirrors conn.rawSink so the manager can pass a logsink.Sink
// through to every Connection it creates without importing the log
// package itself.
type rawSink interface {
	Incoming(line []byte)
	Outgoing(line []byte)
}

func New(handler conn.RequestHandler, logger *slog.Logger, clientVersion string, eventBuffer int) *Manager {
	return &Manager{
		events:        make(chan conn.Event, eventBuffer),
		handler:       handler,
		logger:        logger,
		clientVersion: clientVersion,
	}
}

// Events exposes the manager-wide funnel for the dispatcher's select loop.
func (m *Manager) Events() <-chan conn.Event { return m.events }

// SetHandler wires the host handler after construction, breaking the
// construction cycle between the manager (which creates the event
// channel the handler writes to) and the handler (which the manager
// hands to every new Connection).
func (m *Manager) SetHandler(handler conn.RequestHandler) { m.handler = handler }

// EventSink exposes the same funnel write-side, for the host handler to
// push FileWritten events onto without importing the manager package.
func (m *Manager) EventSink() chan<- conn.Event { return m.events }

// SetRawSink wires the run-wide log file into every Connection this
// manager creates from this point forward (including ones it respawns
// via Clear).
func (m *Manager) SetRawSink(sink rawSink) { m.rawSink = sink }

// SetGitInfo wires the narrow git-branch-lookup collaborator (cloning,
// creating, or pruning worktrees is someone else's job; this is just the
// display label) and the configured worktree directory used to flag a
// session's cwd as a worktree checkout for the header badge.
func (m *Manager) SetGitInfo(reader gitinfo.Reader, worktreeDir string) {
	m.git = reader
	m.worktreeDir = worktreeDir
}

func (m *Manager) Entries() []*Entry { return m.entries }

func (m *Manager) Len() int { return len(m.entries) }

func (m *Manager) IsEmpty() bool { return len(m.entries) == 0 }

func (m *Manager) FocusedIndex() int { return m.focused }

func (m *Manager) Focused() *Entry {
	if m.focused < 0 || m.focused >= len(m.entries) {
		return nil
	}
	return m.entries[m.focused]
}

// isWorktreePath reports whether cwd lives under the configured
// worktree directory, the cheapest available signal that a session's
// checkout is a linked worktree rather than a primary clone.
func (m *Manager) isWorktreePath(cwd string) bool {
	if m.worktreeDir == "" {
		return false
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(m.worktreeDir, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (m *Manager) ByLocalID(localID int) *Entry {
	for _, e := range m.entries {
		if e.Session.LocalID == localID {
			return e
		}
	}
	return nil
}

// Spawn creates a new session in the Spawning state, starts its
// connection, and kicks off the initialize/session-new handshake. It
// returns the assigned local id immediately; the handshake completes
// asynchronously and is observed as conn.Event values delivered on
// Events().
func (m *Manager) Spawn(ctx context.Context, kind agentkind.Kind, cwd string, mcpServers []wire.McpServer) (int, error) {
	m.nextID++
	localID := m.nextID
	label := filepath.Base(cwd)

	sess := session.New(localID, kind, cwd, label, m.isWorktreePath(cwd))
	if m.git != nil {
		if branch, ok := m.git.CurrentBranch(cwd); ok {
			sess.GitBranch = branch
		}
	}
	c := conn.New(localID, m.events, m.handler, m.logger)
	if m.rawSink != nil {
		c.SetRawSink(m.rawSink)
	}
	entry := &Entry{Session: sess, Conn: c}
	m.entries = append(m.entries, entry)
	m.focused = len(m.entries) - 1

	if err := c.Spawn(ctx, kind, cwd); err != nil {
		sess.State = session.Crashed
		return localID, err
	}
	if err := sess.OnChildSpawned(); err != nil {
		return localID, err
	}

	go m.runHandshake(ctx, entry, mcpServers)
	return localID, nil
}

func (m *Manager) runHandshake(ctx context.Context, e *Entry, mcpServers []wire.McpServer) {
	gen := e.Conn.Generation()
	if _, err := e.Conn.Initialize(ctx, m.clientVersion); err != nil {
		m.logger.Warn("initialize failed", "session", e.Session.LocalID, "err", err)
		return
	}
	result, err := e.Conn.NewSession(ctx, e.Session.Cwd, mcpServers)
	if err != nil {
		m.logger.Warn("session/new failed", "session", e.Session.LocalID, "err", err)
		return
	}
	m.events <- conn.Event{
		Kind:           conn.EventSessionCreated,
		SessionLocalID: e.Session.LocalID,
		Generation:     gen,
		AgentSessionID: result.SessionID,
		Models:         result.Models,
	}
}

// Kill tears the session's connection down and marks it Killed.
func (m *Manager) Kill(localID int) error {
	e := m.ByLocalID(localID)
	if e == nil {
		return fmt.Errorf("session %d not found", localID)
	}
	e.Conn.Kill(killGracePeriod)
	return e.Session.OnUserKill()
}

// Clear destroys the current connection and respawns a fresh one with
// the same kind and cwd, emptying the transcript.
func (m *Manager) Clear(ctx context.Context, localID int) error {
	e := m.ByLocalID(localID)
	if e == nil {
		return fmt.Errorf("session %d not found", localID)
	}
	// Best-effort: the protocol's cancellation notification costs
	// nothing to send on a user-initiated clear, even though no agent is
	// required to honor it.
	_ = e.Conn.CancelPrompt(0)
	e.Conn.Kill(killGracePeriod)
	e.Session.Transcript = session.Transcript{}
	e.Session.State = session.Spawning
	e.Session.AgentID = ""
	e.Session.PendingPermission = nil
	e.Session.PendingQuestion = nil
	if m.git != nil {
		if branch, ok := m.git.CurrentBranch(e.Session.Cwd); ok {
			e.Session.GitBranch = branch
		}
	}
	if err := e.Conn.Spawn(ctx, e.Session.Kind, e.Session.Cwd); err != nil {
		e.Session.State = session.Crashed
		return err
	}
	if err := e.Session.OnChildSpawned(); err != nil {
		return err
	}
	go m.runHandshake(ctx, e, nil)
	return nil
}

// Duplicate spawns a second session with the same kind and cwd but no
// shared transcript.
func (m *Manager) Duplicate(ctx context.Context, localID int) (int, error) {
	e := m.ByLocalID(localID)
	if e == nil {
		return 0, fmt.Errorf("session %d not found", localID)
	}
	return m.Spawn(ctx, e.Session.Kind, e.Session.Cwd, nil)
}

// Send rejects unless the session is Idle.
func (m *Manager) Send(ctx context.Context, localID int, text string) error {
	e := m.ByLocalID(localID)
	if e == nil {
		return fmt.Errorf("session %d not found", localID)
	}
	if err := e.Session.OnPromptSubmitted(text); err != nil {
		return err
	}
	go m.runPrompt(ctx, e, text)
	return nil
}

func (m *Manager) runPrompt(ctx context.Context, e *Entry, text string) {
	gen := e.Conn.Generation()
	result, err := e.Conn.Prompt(ctx, e.Session.AgentID, []wire.ContentBlock{wire.TextBlock(text)})
	if err != nil {
		m.logger.Warn("prompt failed", "session", e.Session.LocalID, "err", err)
		return
	}
	m.events <- conn.Event{
		Kind:           conn.EventPromptComplete,
		SessionLocalID: e.Session.LocalID,
		Generation:     gen,
		StopReason:     result.StopReason,
	}
}

// ResolvePermission rejects unless the session is AwaitingPermission. An
// empty optionID cancels the request instead of selecting an option.
func (m *Manager) ResolvePermission(localID int, optionID string) error {
	e := m.ByLocalID(localID)
	if e == nil {
		return fmt.Errorf("session %d not found", localID)
	}
	if e.Session.State != session.AwaitingPermission {
		return fmt.Errorf("session %d: %w: not AwaitingPermission", localID, apperr.ErrInvalidState)
	}
	requestID := e.Session.PendingPermission.RequestID

	decision := "cancelled"
	resp := wire.CancelledPermission()
	if optionID != "" {
		decision = optionID
		resp = wire.SelectedPermission(optionID)
	}
	e.Conn.RespondPermission(requestID, resp)
	return e.Session.OnPermissionDecided(decision)
}

// ResolveQuestion rejects unless the session is AwaitingUserInput.
func (m *Manager) ResolveQuestion(localID int, answer string) error {
	e := m.ByLocalID(localID)
	if e == nil {
		return fmt.Errorf("session %d not found", localID)
	}
	if e.Session.State != session.AwaitingUserInput {
		return fmt.Errorf("session %d: %w: not AwaitingUserInput", localID, apperr.ErrInvalidState)
	}
	requestID := e.Session.PendingQuestion.RequestID
	e.Conn.RespondAskUser(requestID, wire.AnsweredQuestion(answer))
	return e.Session.OnQuestionAnswered(answer)
}

// Focus/selection.

func (m *Manager) Focus(localID int) bool {
	for i, e := range m.entries {
		if e.Session.LocalID == localID {
			m.focused = i
			return true
		}
	}
	return false
}

func (m *Manager) Next() {
	if len(m.entries) == 0 {
		return
	}
	m.focused = (m.focused + 1) % len(m.entries)
}

func (m *Manager) Prev() {
	if len(m.entries) == 0 {
		return
	}
	m.focused = (m.focused - 1 + len(m.entries)) % len(m.entries)
}

func (m *Manager) ByNumber(n int) bool {
	if n < 1 || n > len(m.entries) {
		return false
	}
	m.focused = n - 1
	return true
}

// CyclePermissionMode cycles the named session's mode.
func (m *Manager) CyclePermissionMode(localID int) (session.PermissionMode, error) {
	e := m.ByLocalID(localID)
	if e == nil {
		return "", fmt.Errorf("session %d not found", localID)
	}
	return e.Session.CyclePermissionMode(), nil
}

// CycleModel advances the named session's model and pushes the change to
// the agent via session/set_model.
func (m *Manager) CycleModel(ctx context.Context, localID int) (string, error) {
	e := m.ByLocalID(localID)
	if e == nil {
		return "", fmt.Errorf("session %d not found", localID)
	}
	modelID := e.Session.CycleModel()
	if modelID == "" {
		return "", nil
	}
	if err := e.Conn.SetModel(ctx, e.Session.AgentID, modelID); err != nil {
		return "", err
	}
	return modelID, nil
}

// SortMode names the sort order CycleSort rotates through; it is
// presentational state owned by the manager, not any one session.
// Changing it only updates the stored mode: the session list itself is
// not reordered.
type SortMode int

const (
	SortByLabel SortMode = iota
	SortByActivity
	SortByState
)

func (m *Manager) SortMode() SortMode { return m.sort }

func (m *Manager) CycleSort() SortMode {
	m.sort = (m.sort + 1) % 3
	return m.sort
}
