// Package session holds the per-session state machine, transcript, and
// permission bookkeeping for a single agent connection.
package session

import "agentmux/internal/agentkind"

// State is a session's position in the lifecycle state machine.
type State int

const (
	Spawning State = iota
	Initializing
	Idle
	Prompting
	AwaitingPermission
	AwaitingUserInput
	Crashed
	Killed
)

func (s State) String() string {
	switch s {
	case Spawning:
		return "spawning..."
	case Initializing:
		return "initializing..."
	case Idle:
		return "idle"
	case Prompting:
		return "working..."
	case AwaitingPermission:
		return "permission required"
	case AwaitingUserInput:
		return "question"
	case Crashed:
		return "crashed"
	case Killed:
		return "killed"
	default:
		return "unknown"
	}
}

// IsActive reports whether the child is busy doing work on the session's behalf.
func (s State) IsActive() bool {
	return s == Spawning || s == Initializing || s == Prompting
}

// IsTerminal reports whether the session has exited the live state machine.
func (s State) IsTerminal() bool {
	return s == Crashed || s == Killed
}

// PermissionMode short-circuits some fraction of permission prompts.
// Four modes rather than a simpler three-mode scheme, since plan mode
// needs its own auto-reject-mutating-calls policy distinct from both
// default (always prompt) and accept_edits (auto-allow edits only).
type PermissionMode string

const (
	ModeDefault          PermissionMode = "default"
	ModeAcceptEdits      PermissionMode = "accept_edits"
	ModeBypassPermissions PermissionMode = "bypass_permissions"
	ModePlan             PermissionMode = "plan"
)

var modeCycle = []PermissionMode{ModeDefault, ModeAcceptEdits, ModeBypassPermissions, ModePlan}

// Next cycles to the following permission mode in a fixed order.
func (m PermissionMode) Next() PermissionMode {
	for i, cur := range modeCycle {
		if cur == m {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return ModeDefault
}

func (m PermissionMode) DisplayName() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeAcceptEdits:
		return "accept edits"
	case ModeBypassPermissions:
		return "bypass permissions"
	case ModePlan:
		return "plan"
	default:
		return string(m)
	}
}

// Session is one agent subprocess plus its logical ACP session.
type Session struct {
	LocalID   int
	AgentID   string // assigned by the agent on session/new; empty until then
	Kind      agentkind.Kind
	Cwd       string
	Label     string
	GitBranch string
	IsWorktree bool

	State State

	Transcript Transcript

	CurrentMode        string
	ActiveToolCallID   string
	PermissionMode     PermissionMode
	AvailableModels    []ModelOption
	CurrentModelID     string

	PendingPermission *PendingPermission
	PendingQuestion   *PendingQuestion

	ScrollOffset int // sentinel math lives in the TUI viewport, not here
}

type ModelOption struct {
	ModelID string
	Name    string
}

// New creates a session in the Spawning state.
func New(localID int, kind agentkind.Kind, cwd, label string, isWorktree bool) *Session {
	return &Session{
		LocalID:        localID,
		Kind:           kind,
		Cwd:            cwd,
		Label:          label,
		IsWorktree:     isWorktree,
		State:          Spawning,
		PermissionMode: ModeDefault,
	}
}

// CyclePermissionMode advances to the next mode and returns it.
func (s *Session) CyclePermissionMode() PermissionMode {
	s.PermissionMode = s.PermissionMode.Next()
	return s.PermissionMode
}

// CycleModel advances to the next available model and returns its id, or
// "" if the session has no models to choose from.
func (s *Session) CycleModel() string {
	if len(s.AvailableModels) == 0 {
		return ""
	}
	idx := -1
	for i, m := range s.AvailableModels {
		if m.ModelID == s.CurrentModelID {
			idx = i
			break
		}
	}
	next := s.AvailableModels[(idx+1)%len(s.AvailableModels)]
	s.CurrentModelID = next.ModelID
	return next.ModelID
}

func (s *Session) CurrentModelName() string {
	for _, m := range s.AvailableModels {
		if m.ModelID == s.CurrentModelID {
			return m.Name
		}
	}
	return ""
}
