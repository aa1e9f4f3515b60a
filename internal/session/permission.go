package session

import "agentmux/internal/wire"

// PendingPermission is a session/request_permission awaiting a user or
// policy decision. At most one exists per session at any time.
type PendingPermission struct {
	RequestID  uint64
	ToolCallID string
	Title      string
	Options    []wire.PermissionOption
	Selected   int
}

func NewPendingPermission(requestID uint64, toolCall wire.ToolCallRef, options []wire.PermissionOption) *PendingPermission {
	return &PendingPermission{RequestID: requestID, ToolCallID: toolCall.ToolCallID, Title: toolCall.Title, Options: options}
}

func (p *PendingPermission) SelectNext() {
	if len(p.Options) == 0 {
		return
	}
	p.Selected = (p.Selected + 1) % len(p.Options)
}

func (p *PendingPermission) SelectPrev() {
	if len(p.Options) == 0 {
		return
	}
	p.Selected = (p.Selected - 1 + len(p.Options)) % len(p.Options)
}

func (p *PendingPermission) SelectedOption() *wire.PermissionOption {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return nil
	}
	return &p.Options[p.Selected]
}

// FirstAllowOption returns the first allow-kind option, used by
// accept_edits and bypass_permissions auto-resolution.
func (p *PendingPermission) FirstAllowOption() *wire.PermissionOption {
	for i := range p.Options {
		if p.Options[i].Kind.IsAllow() {
			return &p.Options[i]
		}
	}
	return nil
}

// FirstRejectOption returns the first reject-kind option, used by plan
// mode's auto-rejection of mutating tools.
func (p *PendingPermission) FirstRejectOption() *wire.PermissionOption {
	for i := range p.Options {
		if p.Options[i].Kind.IsReject() {
			return &p.Options[i]
		}
	}
	return nil
}

// PendingQuestion is a session/ask_user request awaiting a reply. This
// mirrors PendingPermission's shape since both are "agent blocks on a
// client-surfaced decision" requests, differing only in payload.
type PendingQuestion struct {
	RequestID   uint64
	Question    string
	Options     []wire.AskUserOption
	MultiSelect bool
	Selected    int
	Input       string
	Cursor      int
}

func NewPendingQuestion(requestID uint64, req wire.AskUserRequestParams) *PendingQuestion {
	return &PendingQuestion{RequestID: requestID, Question: req.Question, Options: req.Options, MultiSelect: req.MultiSelect}
}

func (q *PendingQuestion) IsFreeText() bool {
	return len(q.Options) == 0
}

func (q *PendingQuestion) SelectNext() {
	if len(q.Options) == 0 {
		return
	}
	q.Selected = (q.Selected + 1) % len(q.Options)
}

func (q *PendingQuestion) SelectPrev() {
	if len(q.Options) == 0 {
		return
	}
	q.Selected = (q.Selected - 1 + len(q.Options)) % len(q.Options)
}

func (q *PendingQuestion) SelectedOption() *wire.AskUserOption {
	if q.Selected < 0 || q.Selected >= len(q.Options) {
		return nil
	}
	return &q.Options[q.Selected]
}

// Answer resolves the current selection or typed input into the string
// sent back to the agent.
func (q *PendingQuestion) Answer() string {
	if q.IsFreeText() {
		return q.Input
	}
	if opt := q.SelectedOption(); opt != nil {
		if opt.Value != nil {
			return *opt.Value
		}
		return opt.Label
	}
	return q.Input
}

func (q *PendingQuestion) InputChar(c rune) {
	runes := []rune(q.Input)
	if q.Cursor > len(runes) {
		q.Cursor = len(runes)
	}
	runes = append(runes[:q.Cursor], append([]rune{c}, runes[q.Cursor:]...)...)
	q.Input = string(runes)
	q.Cursor++
}

func (q *PendingQuestion) InputBackspace() {
	if q.Cursor == 0 {
		return
	}
	runes := []rune(q.Input)
	runes = append(runes[:q.Cursor-1], runes[q.Cursor:]...)
	q.Input = string(runes)
	q.Cursor--
}

func (q *PendingQuestion) InputLeft() {
	if q.Cursor > 0 {
		q.Cursor--
	}
}

func (q *PendingQuestion) InputRight() {
	if q.Cursor < len([]rune(q.Input)) {
		q.Cursor++
	}
}
