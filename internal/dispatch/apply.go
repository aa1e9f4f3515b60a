package dispatch

import (
	"context"
)

// apply turns a single user-intent Action into the corresponding
// manager call. Errors are logged, never propagated: a rejected action
// (e.g. sending to a non-Idle session) is a no-op from the loop's point
// of view, not a fatal condition.
func (d *Dispatcher) apply(ctx context.Context, a Action) {
	switch a.Kind {
	case ActSpawn:
		if _, err := d.mgr.Spawn(ctx, a.SpawnKind, a.SpawnCwd, nil); err != nil {
			d.logger.Warn("spawn failed", "kind", a.SpawnKind, "cwd", a.SpawnCwd, "err", err)
		}

	case ActKill:
		if err := d.mgr.Kill(a.LocalID); err != nil {
			d.logger.Warn("kill failed", "session", a.LocalID, "err", err)
		} else if d.terminals != nil {
			d.terminals.KillSessionTerminals(a.LocalID)
		}

	case ActClear:
		if err := d.mgr.Clear(ctx, a.LocalID); err != nil {
			d.logger.Warn("clear failed", "session", a.LocalID, "err", err)
		}

	case ActDuplicate:
		if _, err := d.mgr.Duplicate(ctx, a.LocalID); err != nil {
			d.logger.Warn("duplicate failed", "session", a.LocalID, "err", err)
		}

	case ActFocus:
		d.mgr.Focus(a.LocalID)

	case ActNextSession:
		d.mgr.Next()

	case ActPrevSession:
		d.mgr.Prev()

	case ActSelectByNumber:
		d.mgr.ByNumber(a.Number)

	case ActSendPrompt:
		if err := d.mgr.Send(ctx, a.LocalID, a.Text); err != nil {
			d.logger.Warn("send failed", "session", a.LocalID, "err", err)
		}

	case ActResolvePermission:
		if err := d.mgr.ResolvePermission(a.LocalID, a.OptionID); err != nil {
			d.logger.Warn("resolve permission failed", "session", a.LocalID, "err", err)
		}

	case ActAnswerQuestion:
		if err := d.mgr.ResolveQuestion(a.LocalID, a.Answer); err != nil {
			d.logger.Warn("resolve question failed", "session", a.LocalID, "err", err)
		}

	case ActScroll:
		if e := d.mgr.ByLocalID(a.LocalID); e != nil {
			e.Session.ScrollOffset += a.ScrollDelta
			if e.Session.ScrollOffset < 0 {
				e.Session.ScrollOffset = 0
			}
		}

	case ActCyclePermissionMode:
		if _, err := d.mgr.CyclePermissionMode(a.LocalID); err != nil {
			d.logger.Warn("cycle permission mode failed", "session", a.LocalID, "err", err)
		}

	case ActCycleModel:
		if _, err := d.mgr.CycleModel(ctx, a.LocalID); err != nil {
			d.logger.Warn("cycle model failed", "session", a.LocalID, "err", err)
		}

	case ActCycleSort:
		d.mgr.CycleSort()

	case ActSelectPermissionOption:
		if e := d.mgr.ByLocalID(a.LocalID); e != nil && e.Session.PendingPermission != nil {
			if a.SelectDelta < 0 {
				e.Session.PendingPermission.SelectPrev()
			} else {
				e.Session.PendingPermission.SelectNext()
			}
		}

	case ActSelectQuestionOption:
		if e := d.mgr.ByLocalID(a.LocalID); e != nil && e.Session.PendingQuestion != nil {
			if a.SelectDelta < 0 {
				e.Session.PendingQuestion.SelectPrev()
			} else {
				e.Session.PendingQuestion.SelectNext()
			}
		}

	case ActQuestionInput:
		if e := d.mgr.ByLocalID(a.LocalID); e != nil && e.Session.PendingQuestion != nil {
			q := e.Session.PendingQuestion
			switch a.InputOp {
			case InputChar:
				q.InputChar(a.InputRune)
			case InputBackspace:
				q.InputBackspace()
			case InputLeft:
				q.InputLeft()
			case InputRight:
				q.InputRight()
			}
		}
	}
}
