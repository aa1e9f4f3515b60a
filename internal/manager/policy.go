package manager

import (
	"path/filepath"
	"strings"

	"agentmux/internal/session"
)

// AllowsPath implements host.PolicyProvider: a path is allowed without a
// fresh permission prompt when it lies within the session's cwd and the
// session's mode treats that as enough (bypass_permissions always does;
// accept_edits and plan still require the cwd containment; default never
// auto-allows).
func (m *Manager) AllowsPath(localID int, path string) bool {
	e := m.ByLocalID(localID)
	if e == nil {
		return false
	}
	if e.Session.PermissionMode == session.ModeDefault {
		return false
	}
	if e.Session.PermissionMode == session.ModeBypassPermissions {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	cwd, err := filepath.Abs(e.Session.Cwd)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AllowsTerminal implements host.PolicyProvider: spawning a shell
// command is never auto-allowed in default mode, always allowed in
// bypass_permissions, and otherwise follows the same mutating/read-only
// classification request_permission prompts use elsewhere, since
// terminal/create carries no file path to check containment against.
func (m *Manager) AllowsTerminal(localID int, command string) bool {
	e := m.ByLocalID(localID)
	if e == nil {
		return false
	}
	switch e.Session.PermissionMode {
	case session.ModeBypassPermissions:
		return true
	case session.ModePlan:
		return !session.ToolIsMutating(command)
	default:
		return false
	}
}
