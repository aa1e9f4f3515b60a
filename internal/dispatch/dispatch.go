package dispatch

import (
	"context"
	"log/slog"
	"time"

	"agentmux/internal/conn"
	"agentmux/internal/manager"
	"agentmux/internal/notify"
	"agentmux/internal/session"
	"agentmux/internal/wire"
)

// Dispatcher is the single-threaded cooperative loop that owns all
// mutable session state: it selects over user intent, agent events, and
// a periodic tick, reduces each into actions, applies them to the
// manager's state, and bumps a revision counter so the renderer can
// observe a consistent snapshot.
type Dispatcher struct {
	mgr       *manager.Manager
	terminals terminalKiller
	logger    *slog.Logger
	notifier  *notify.Manager
	actions     chan Action
	revision    uint64
	tickEvery   time.Duration
	snapshotReq chan chan Snapshot

	// idleSince/idleNotified track, per session, how long a session has
	// sat Idle so SessionIdle fires only after the configured delay and
	// only once per idle period, rather than once per tick.
	idleSince    map[int]time.Time
	idleNotified map[int]bool
}

// terminalKiller lets the dispatcher tell the host handler to tear down
// a session's ephemeral terminals on Killed/Crashed without a direct
// import cycle back into internal/host.
type terminalKiller interface {
	KillSessionTerminals(localID int)
}

func New(mgr *manager.Manager, terminals terminalKiller, logger *slog.Logger, notifier *notify.Manager) *Dispatcher {
	return &Dispatcher{
		mgr:          mgr,
		terminals:    terminals,
		logger:       logger,
		notifier:     notifier,
		actions:      make(chan Action, 32),
		tickEvery:    250 * time.Millisecond,
		snapshotReq:  make(chan chan Snapshot, 8),
		idleSince:    make(map[int]time.Time),
		idleNotified: make(map[int]bool),
	}
}

// Submit enqueues a user-intent action for the next loop iteration. It
// never blocks forever: the queue is sized generously for a single
// interactive user.
func (d *Dispatcher) Submit(a Action) {
	d.actions <- a
}

// Run drives the loop until ctx is cancelled or an ActQuit action is
// applied. It returns the exit code the caller should use.
func (d *Dispatcher) Run(ctx context.Context) int {
	ticker := time.NewTicker(d.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0

		case a := <-d.actions:
			if a.Kind == ActQuit {
				return 0
			}
			d.apply(ctx, a)
			d.bump()

		case ev := <-d.mgr.Events():
			d.handleEvent(ctx, ev)
			d.bump()

		case <-ticker.C:
			d.checkIdleNotifications()
			d.bump()

		case reply := <-d.snapshotReq:
			reply <- d.snapshotLocked()
		}
	}
}

func (d *Dispatcher) bump() {
	d.revision++
}

// checkIdleNotifications fires notify.Manager.SessionIdle once per idle
// period, after the session has sat Idle for at least IdleDelay, rather
// than the instant it transitions (a session that goes Idle for a split
// second between turns shouldn't page the user).
func (d *Dispatcher) checkIdleNotifications() {
	if d.notifier == nil {
		return
	}
	now := time.Now()
	live := make(map[int]bool, len(d.mgr.Entries()))
	for _, e := range d.mgr.Entries() {
		live[e.Session.LocalID] = true
		if e.Session.State != session.Idle {
			delete(d.idleSince, e.Session.LocalID)
			delete(d.idleNotified, e.Session.LocalID)
			continue
		}
		since, ok := d.idleSince[e.Session.LocalID]
		if !ok {
			d.idleSince[e.Session.LocalID] = now
			continue
		}
		if !d.idleNotified[e.Session.LocalID] && now.Sub(since) >= d.notifier.IdleDelay() {
			d.notifier.SessionIdle(e.Session.Label)
			d.idleNotified[e.Session.LocalID] = true
		}
	}
	for id := range d.idleSince {
		if !live[id] {
			delete(d.idleSince, id)
			delete(d.idleNotified, id)
		}
	}
}

func (d *Dispatcher) handleEvent(ctx context.Context, ev conn.Event) {
	e := d.mgr.ByLocalID(ev.SessionLocalID)
	if e == nil {
		return
	}
	if ev.Generation != e.Conn.Generation() {
		d.logger.Debug("dropping event from superseded connection generation", "session", e.Session.LocalID, "event_gen", ev.Generation, "current_gen", e.Conn.Generation())
		return
	}
	switch ev.Kind {
	case conn.EventSessionCreated:
		if err := e.Session.OnSessionNewOK(ev.AgentSessionID); err != nil {
			d.logger.Warn("session/new transition rejected", "session", e.Session.LocalID, "err", err)
			return
		}
		if ev.Models != nil {
			e.Session.AvailableModels = make([]session.ModelOption, len(ev.Models.Available))
			for i, m := range ev.Models.Available {
				e.Session.AvailableModels[i] = session.ModelOption{ModelID: m.ModelID, Name: m.Name}
			}
			e.Session.CurrentModelID = ev.Models.CurrentID
		}

	case conn.EventUpdate:
		d.applyUpdate(e, ev.Update)

	case conn.EventPermissionRequest:
		d.handlePermissionRequest(e, ev)

	case conn.EventAskUserRequest:
		q := session.NewPendingQuestion(ev.RequestID, wire.AskUserRequestParams{
			Question:    ev.Question,
			Options:     ev.AskOptions,
			MultiSelect: ev.MultiSelect,
		})
		if err := e.Session.OnQuestionAsked(q); err != nil {
			d.logger.Warn("ask_user rejected", "session", e.Session.LocalID, "err", err)
		} else if d.notifier != nil {
			d.notifier.QuestionAsked(e.Session.Label)
		}

	case conn.EventPromptComplete:
		d.applyStopReason(e, ev.StopReason)

	case conn.EventFileWritten:
		e.Session.Transcript.AppendFileDiff(ev.FilePath, ev.FileDiff)

	case conn.EventProtocolError:
		e.Session.Transcript.AppendError("protocol", ev.ErrorMessage)

	case conn.EventDisconnected:
		d.handleDisconnected(e, ev)
	}
}

func (d *Dispatcher) applyUpdate(e *manager.Entry, env wire.SessionUpdateEnvelope) {
	if err := e.Session.OnSessionUpdate(); err != nil {
		d.logger.Debug("session/update outside Prompting", "session", e.Session.LocalID, "err", err)
	}
	u := env.Update
	switch {
	case u.AgentMessageChunk != nil:
		e.Session.Transcript.AppendAgentMessageChunk(u.AgentMessageChunk.Text)

	case u.ToolCall != nil:
		status := session.ToolCallStatus(u.ToolCall.Status)
		e.Session.Transcript.UpsertToolCall(u.ToolCall.ToolCallID, u.ToolCall.Title, u.ToolCall.Description, u.ToolCall.RawInput, status)
		e.Session.ActiveToolCallID = u.ToolCall.ToolCallID

	case u.ToolCallUpdate != nil:
		status := session.ToolCallStatus(u.ToolCallUpdate.Status)
		if !e.Session.Transcript.UpdateToolCallStatus(u.ToolCallUpdate.ToolCallID, status) {
			d.logger.Warn("tool_call_update for unknown id", "session", e.Session.LocalID, "id", u.ToolCallUpdate.ToolCallID)
		}
		if status.IsTerminal() && e.Session.ActiveToolCallID == u.ToolCallUpdate.ToolCallID {
			e.Session.ActiveToolCallID = ""
		}

	case u.Plan != nil:
		entries := make([]session.PlanEntry, len(u.Plan.Entries))
		for i, pe := range u.Plan.Entries {
			entries[i] = session.PlanEntry{Content: pe.Content, Status: session.PlanStatus(pe.Status)}
		}
		e.Session.Transcript.ReplacePlanSnapshot(entries)

	case u.ModeUpdate != nil:
		e.Session.CurrentMode = u.ModeUpdate.Mode
		e.Session.Transcript.AppendModeChange(u.ModeUpdate.Mode)

	default:
		// Unknown sessionUpdate tag: preserved in u.Raw, logged and
		// otherwise ignored rather than failing the session.
		d.logger.Debug("unrecognized session update tag", "session", e.Session.LocalID, "tag", u.Tag)
	}
}

func (d *Dispatcher) applyStopReason(e *manager.Entry, reason wire.StopReason) {
	if reason == wire.StopRefusal {
		e.Session.Transcript.AppendError("refusal", "agent refused to continue the turn")
	}
	if err := e.Session.OnTurnComplete(); err != nil {
		d.logger.Warn("turn-complete transition rejected", "session", e.Session.LocalID, "err", err)
	}
}

// handlePermissionRequest applies the session's permission mode policy.
// default always surfaces the prompt; accept_edits/bypass_permissions/
// plan resolve some or all requests without a UI prompt but still
// record a PermissionResolved entry so the transcript shows what was
// auto-decided and why.
func (d *Dispatcher) handlePermissionRequest(e *manager.Entry, ev conn.Event) {
	p := session.NewPendingPermission(ev.RequestID, ev.ToolCall, ev.Options)
	if err := e.Session.OnPermissionRequested(p); err != nil {
		d.logger.Warn("permission request rejected (already pending)", "session", e.Session.LocalID, "err", err)
		e.Conn.RespondPermission(ev.RequestID, wire.CancelledPermission())
		return
	}

	switch e.Session.PermissionMode {
	case session.ModeBypassPermissions:
		d.autoResolve(e, p.FirstAllowOption())

	case session.ModeAcceptEdits:
		if session.ToolIsEdit(p.Title) {
			d.autoResolve(e, p.FirstAllowOption())
		}

	case session.ModePlan:
		if session.ToolIsMutating(p.Title) {
			d.autoResolve(e, p.FirstRejectOption())
		} else {
			d.autoResolve(e, p.FirstAllowOption())
		}

	case session.ModeDefault:
		// Leave pending; the TUI surfaces the prompt and the user
		// resolves it via ActResolvePermission.
		if d.notifier != nil {
			d.notifier.PermissionRequired(e.Session.Label, p.Title)
		}
	}
}

func (d *Dispatcher) autoResolve(e *manager.Entry, opt *wire.PermissionOption) {
	if opt == nil {
		// No matching option offered; fall back to surfacing the prompt
		// rather than guessing.
		return
	}
	e.Conn.RespondPermission(e.Session.PendingPermission.RequestID, wire.SelectedPermission(opt.OptionID))
	if err := e.Session.OnPermissionDecided(opt.OptionID); err != nil {
		d.logger.Warn("auto-resolve transition failed", "session", e.Session.LocalID, "err", err)
	}
}

func (d *Dispatcher) handleDisconnected(e *manager.Entry, ev conn.Event) {
	if e.Session.State.IsTerminal() {
		return // already Killed by user action before EOF arrived
	}
	if err := e.Session.OnWriterFailure(); err != nil {
		d.logger.Warn("crash transition rejected", "session", e.Session.LocalID, "err", err)
		return
	}
	if ev.ExitErr != nil {
		e.Session.Transcript.AppendError("transport", ev.ExitErr.Error())
	}
	if d.terminals != nil {
		d.terminals.KillSessionTerminals(e.Session.LocalID)
	}
}
