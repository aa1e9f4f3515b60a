package session

import "strings"

// ToolIsMutating classifies a tool call by its advertised title using a
// keyword heuristic, since the wire protocol carries no explicit
// read/write flag on a permission request. Anything not recognizably
// read-only is treated as mutating, the conservative direction for a
// plan-mode auto-reject.
func ToolIsMutating(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range []string{"read", "list", "search", "grep", "glob", "view", "show", "fetch"} {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// ToolIsEdit classifies a tool call as an edit for accept_edits mode:
// file mutation verbs specifically, narrower than "mutating" (which also
// covers e.g. running arbitrary shell commands).
func ToolIsEdit(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range []string{"write", "edit", "patch", "create file", "delete file", "rename"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
