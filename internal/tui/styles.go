package tui

import "github.com/charmbracelet/lipgloss"

// theme groups the lipgloss styles the renderer paints with as a single
// struct, styled for a multiplexer of agent sessions.
type theme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	tabCrashed  lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	helpText    lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style

	roleUser     lipgloss.Style
	roleAgent    lipgloss.Style
	roleTool     lipgloss.Style
	roleToolDone lipgloss.Style
	roleToolFail lipgloss.Style
	roleSystem   lipgloss.Style
	roleError    lipgloss.Style
	roleDiffAdd  lipgloss.Style
	roleDiffDel  lipgloss.Style

	modalFrame  lipgloss.Style
	modalTitle  lipgloss.Style
	optionPick  lipgloss.Style
	optionPlain lipgloss.Style
}

func newTheme() theme {
	teal := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	amber := lipgloss.Color("#ffd166")
	rose := lipgloss.Color("#ff71ce")
	red := lipgloss.Color("#ff5d5d")
	bg := lipgloss.Color("#120924")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		root: lipgloss.NewStyle().Background(bg).Foreground(text),
		header: lipgloss.NewStyle().
			Background(panelBg).Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).BorderForeground(teal).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(teal).Foreground(lipgloss.Color("#08111f")).
			Bold(true).Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#2a184a")).Foreground(muted).
			Padding(0, 1),
		tabCrashed: lipgloss.NewStyle().
			Background(red).Foreground(lipgloss.Color("#1f0505")).
			Bold(true).Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).BorderForeground(teal).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(mint).Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).BorderForeground(rose).
			Padding(0, 1),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		status:      lipgloss.NewStyle().Foreground(teal).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).BorderForeground(mint).
			Padding(0, 1),

		roleUser:     lipgloss.NewStyle().Foreground(mint).Bold(true),
		roleAgent:    lipgloss.NewStyle().Foreground(teal).Bold(true),
		roleTool:     lipgloss.NewStyle().Foreground(muted),
		roleToolDone: lipgloss.NewStyle().Foreground(mint),
		roleToolFail: lipgloss.NewStyle().Foreground(red),
		roleSystem:   lipgloss.NewStyle().Foreground(amber),
		roleError:    lipgloss.NewStyle().Foreground(red).Bold(true),
		roleDiffAdd:  lipgloss.NewStyle().Foreground(mint),
		roleDiffDel:  lipgloss.NewStyle().Foreground(red),

		modalFrame: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).BorderForeground(rose).
			Padding(1, 2),
		modalTitle:  lipgloss.NewStyle().Foreground(teal).Bold(true),
		optionPick:  lipgloss.NewStyle().Foreground(lipgloss.Color("#08111f")).Background(rose).Bold(true).Padding(0, 1),
		optionPlain: lipgloss.NewStyle().Foreground(text).Padding(0, 1),
	}
}
