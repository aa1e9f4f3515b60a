package tui

import (
	"fmt"
	"strings"

	"agentmux/internal/session"
)

// renderTranscript flattens a session's transcript into the string the
// timeline viewport displays, one rendered line (or block) per entry,
// built as a []string and joined at the end.
func renderTranscript(t *theme, tr *session.Transcript) string {
	var lines []string
	for i := range tr.Entries {
		lines = append(lines, renderEntry(t, &tr.Entries[i])...)
	}
	if len(lines) == 0 {
		return t.helpText.Render("no activity yet")
	}
	return strings.Join(lines, "\n")
}

func renderEntry(t *theme, e *session.Entry) []string {
	switch e.Kind {
	case session.EntryUserMessage:
		return wrapPrefixed(t.roleUser.Render("you"), e.Text)

	case session.EntryAgentMessageChunk:
		return wrapPrefixed(t.roleAgent.Render("agent"), e.Text)

	case session.EntryToolCall:
		style := t.roleTool
		switch e.Status {
		case session.ToolCompleted:
			style = t.roleToolDone
		case session.ToolFailed:
			style = t.roleToolFail
		}
		label := e.Title
		if label == "" {
			label = e.ToolCallID
		}
		line := style.Render(fmt.Sprintf("tool [%s] %s", e.Status, label))
		if e.Description != "" {
			return []string{line, "  " + e.Description}
		}
		return []string{line}

	case session.EntryPlanSnapshot:
		out := []string{t.panelTitle.Render("plan")}
		for _, pe := range e.PlanEntries {
			mark := " "
			switch pe.Status {
			case session.PlanInProgress:
				mark = "~"
			case session.PlanCompleted:
				mark = "x"
			}
			out = append(out, fmt.Sprintf("  [%s] %s", mark, pe.Content))
		}
		return out

	case session.EntryModeChange:
		return []string{t.roleSystem.Render("mode -> " + e.Mode)}

	case session.EntryError:
		return wrapPrefixed(t.roleError.Render(e.ErrorKind+" error"), e.ErrorMessage)

	case session.EntryPermissionResolved:
		decision := e.PermissionDecision
		if decision == "" {
			decision = "cancelled"
		}
		return []string{t.roleSystem.Render(fmt.Sprintf("permission %s -> %s", e.ToolCallID, decision))}

	case session.EntryQuestionResolved:
		return []string{
			t.roleSystem.Render("question: " + e.Question),
			"  answer: " + e.Answer,
		}

	case session.EntryFileDiff:
		out := []string{t.panelTitle.Render("diff " + e.DiffPath)}
		for _, dl := range strings.Split(e.DiffText, "\n") {
			switch {
			case strings.HasPrefix(dl, "+") && !strings.HasPrefix(dl, "+++"):
				out = append(out, t.roleDiffAdd.Render(dl))
			case strings.HasPrefix(dl, "-") && !strings.HasPrefix(dl, "---"):
				out = append(out, t.roleDiffDel.Render(dl))
			default:
				out = append(out, dl)
			}
		}
		return out

	default:
		return nil
	}
}

func wrapPrefixed(prefix, text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, l := range lines {
		if i == 0 {
			out[i] = prefix + ": " + l
		} else {
			out[i] = "  " + l
		}
	}
	return out
}

// renderPlanSidebar pulls out only the most recent plan snapshot, for the
// always-visible sidebar rather than scrolling it into the main timeline.
func renderPlanSidebar(t *theme, tr *session.Transcript) string {
	for i := len(tr.Entries) - 1; i >= 0; i-- {
		if tr.Entries[i].Kind == session.EntryPlanSnapshot {
			lines := renderEntry(t, &tr.Entries[i])
			return strings.Join(lines, "\n")
		}
	}
	return t.helpText.Render("no plan yet")
}
