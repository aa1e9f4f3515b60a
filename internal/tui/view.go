package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agentmux/internal/agentkind"
	"agentmux/internal/manager"
	"agentmux/internal/session"
)

func (m Model) View() string {
	if m.width == 0 {
		return "booting..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.timeline.View(), m.sidebar.View())

	var bottom string
	if m.spawning {
		bottom = m.renderSpawnModal()
	} else if e := m.focusedEntry(); e != nil && e.Session.State == session.AwaitingPermission {
		bottom = m.renderPermissionModal(e)
	} else if e := m.focusedEntry(); e != nil && e.Session.State == session.AwaitingUserInput {
		bottom = m.renderQuestionModal(e)
	} else {
		bottom = m.inputPanel()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.theme.panel.Width(m.width-2).Render(body),
		bottom,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	var tabs []string
	for i, e := range m.snap.Entries {
		label := fmt.Sprintf("%d:%s [%s]", i+1, e.Session.Label, e.Session.Kind.DisplayName())
		if e.Session.IsWorktree {
			label += " *"
		}
		if e.Session.GitBranch != "" {
			label += " (" + e.Session.GitBranch + ")"
		}
		style := m.theme.tabInactive
		switch {
		case i == m.snap.Focused:
			style = m.theme.tabActive
		case e.Session.State.IsTerminal():
			style = m.theme.tabCrashed
		}
		tabs = append(tabs, style.Render(label+" "+e.Session.State.String()))
	}
	if len(tabs) == 0 {
		tabs = append(tabs, m.theme.tabInactive.Render("no sessions"))
	}
	return m.theme.header.Width(m.width - 2).Render(strings.Join(tabs, " "))
}

func (m Model) inputPanel() string {
	prefix := ""
	if e := m.focusedEntry(); e != nil && e.Session.State.IsActive() {
		prefix = m.spinner.View() + " "
	}
	return m.theme.inputPanel.Width(m.width - 2).Render(prefix + m.input.View())
}

func (m Model) renderFooter() string {
	var status string
	if e := m.focusedEntry(); e != nil {
		status = fmt.Sprintf("%s | mode: %s | model: %s",
			e.Session.State.String(), e.Session.PermissionMode.DisplayName(), e.Session.CurrentModelName())
	} else {
		status = m.statusLine
	}
	help := "ctrl+n spawn  ctrl+k kill  ctrl+r clear  ctrl+g dup  ctrl+p mode  ctrl+o model  tab switch  ctrl+y copy  ctrl+c quit"
	return m.theme.footer.Width(m.width - 2).Render(
		m.theme.status.Render(status) + "\n" + m.theme.helpText.Render(help))
}

func (m Model) renderSpawnModal() string {
	kinds := allKindNames()
	var opts []string
	for i, name := range kinds {
		if i == m.spawnKindIdx {
			opts = append(opts, m.theme.optionPick.Render(name))
		} else {
			opts = append(opts, m.theme.optionPlain.Render(name))
		}
	}
	body := m.theme.modalTitle.Render("spawn a new session") + "\n" +
		strings.Join(opts, "  ") + "\n" +
		m.spawnCwd.View() + "\n" +
		m.theme.helpText.Render("tab: pick agent  enter: spawn  esc: cancel")
	return m.theme.modalFrame.Width(m.width - 6).Render(body)
}

func (m Model) renderPermissionModal(e *manager.Entry) string {
	p := e.Session.PendingPermission
	var opts []string
	for i, o := range p.Options {
		label := o.Name
		if i == p.Selected {
			opts = append(opts, m.theme.optionPick.Render(label))
		} else {
			opts = append(opts, m.theme.optionPlain.Render(label))
		}
	}
	body := m.theme.modalTitle.Render("permission required: "+p.Title) + "\n" +
		strings.Join(opts, "  ") + "\n" +
		m.theme.helpText.Render("left/right select  enter confirm  esc cancel")
	return m.theme.modalFrame.Width(m.width - 6).Render(body)
}

func (m Model) renderQuestionModal(e *manager.Entry) string {
	q := e.Session.PendingQuestion
	var body string
	if q.IsFreeText() {
		line := q.Input
		body = m.theme.modalTitle.Render(q.Question) + "\n> " + line + "\n" +
			m.theme.helpText.Render("type your answer, enter to submit")
	} else {
		var opts []string
		for i, o := range q.Options {
			if i == q.Selected {
				opts = append(opts, m.theme.optionPick.Render(o.Label))
			} else {
				opts = append(opts, m.theme.optionPlain.Render(o.Label))
			}
		}
		body = m.theme.modalTitle.Render(q.Question) + "\n" + strings.Join(opts, "  ") + "\n" +
			m.theme.helpText.Render("left/right select  enter confirm")
	}
	return m.theme.modalFrame.Width(m.width - 6).Render(body)
}

func allKindNames() []string {
	kinds := agentkind.All()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.DisplayName())
	}
	return names
}
