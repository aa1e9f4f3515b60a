package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"agentmux/internal/agentkind"
	"agentmux/internal/dispatch"
	"agentmux/internal/manager"
	"agentmux/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		return m, tea.Batch(cmds...)

	case tickMsg:
		m.refreshSnapshot()
		cmds = append(cmds, tickEvery(150*time.Millisecond))
		m.syncPanes()
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	// Wheel events scroll the viewport immediately for responsiveness;
	// the resulting offset delta is coalesced and persisted to the
	// session via a single debounced ActScroll rather than one per line.
	case tea.MouseMsg:
		if m.spawning {
			return m, nil
		}
		before := m.timeline.YOffset
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
		if flush := m.accumulateScroll(m.timeline.YOffset - before); flush != nil {
			cmds = append(cmds, flush)
		}
		return m, tea.Batch(cmds...)

	case scrollFlushMsg:
		m.scrollArmed = false
		if e := m.focusedEntry(); e != nil && m.pendingScrollDelta != 0 {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActScroll, LocalID: e.Session.LocalID, ScrollDelta: m.pendingScrollDelta})
		}
		m.pendingScrollDelta = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) applyLayout() {
	headerH, footerH, inputH := 3, 3, 3
	bodyH := m.height - headerH - footerH - inputH
	if bodyH < 3 {
		bodyH = 3
	}
	sidebarW := m.width / 3
	if sidebarW < 20 {
		sidebarW = 20
	}
	timelineW := m.width - sidebarW - 4
	if timelineW < 10 {
		timelineW = 10
	}
	m.timeline.Width = timelineW
	m.timeline.Height = bodyH
	m.sidebar.Width = sidebarW
	m.sidebar.Height = bodyH
	m.input.Width = m.width - 6
	m.spawnCwd.Width = m.width - 12
}

// syncPanes re-renders the viewports from the current snapshot; called
// on every render tick so the transcript keeps pace with
// streamed agent output without the renderer mutating session state.
func (m *Model) syncPanes() {
	e := m.focusedEntry()
	if e == nil {
		m.timeline.SetContent(m.theme.helpText.Render("no sessions yet; ctrl+n to spawn one"))
		m.sidebar.SetContent("")
		m.lastFocusedID = -1
		return
	}

	switched := e.Session.LocalID != m.lastFocusedID
	wasBottom := m.timeline.AtBottom()
	m.timeline.SetContent(renderTranscript(&m.theme, &e.Session.Transcript))
	switch {
	case switched:
		m.timeline.SetYOffset(e.Session.ScrollOffset)
		m.lastFocusedID = e.Session.LocalID
		m.pendingScrollDelta = 0
	case wasBottom:
		m.timeline.GotoBottom()
	}
	m.sidebar.SetContent(renderPlanSidebar(&m.theme, &e.Session.Transcript))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.spawning {
		return m.handleSpawnKey(msg)
	}

	e := m.focusedEntry()

	if e != nil && e.Session.State == session.AwaitingPermission {
		return m.handlePermissionKey(msg, e)
	}
	if e != nil && e.Session.State == session.AwaitingUserInput {
		return m.handleQuestionKey(msg, e)
	}

	switch msg.String() {
	case "ctrl+c":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActQuit})
		return m, tea.Quit

	case "ctrl+n":
		m.spawning = true
		m.spawnKindIdx = 0
		m.spawnCwd.SetValue(".")
		m.spawnCwd.Focus()
		m.input.Blur()
		return m, nil

	case "tab":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActNextSession})
		return m, nil

	case "shift+tab":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActPrevSession})
		return m, nil

	case "ctrl+k":
		if e != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActKill, LocalID: e.Session.LocalID})
		}
		return m, nil

	case "ctrl+r":
		if e != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActClear, LocalID: e.Session.LocalID})
		}
		return m, nil

	case "ctrl+g":
		if e != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActDuplicate, LocalID: e.Session.LocalID})
		}
		return m, nil

	case "ctrl+p":
		if e != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActCyclePermissionMode, LocalID: e.Session.LocalID})
		}
		return m, nil

	case "ctrl+o":
		if e != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActCycleModel, LocalID: e.Session.LocalID})
		}
		return m, nil

	case "ctrl+s":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActCycleSort})
		return m, nil

	case "ctrl+y":
		if e != nil && m.clip != nil {
			if text := lastAgentMessage(e); text != "" {
				_ = m.clip.Write(text)
			}
		}
		return m, nil

	case "pgup":
		before := m.timeline.YOffset
		m.timeline.HalfPageUp()
		return m, m.accumulateScroll(m.timeline.YOffset - before)

	case "pgdown":
		before := m.timeline.YOffset
		m.timeline.HalfPageDown()
		return m, m.accumulateScroll(m.timeline.YOffset - before)

	case "up":
		if strings.TrimSpace(m.input.Value()) == "" {
			before := m.timeline.YOffset
			m.timeline.LineUp(4)
			return m, m.accumulateScroll(m.timeline.YOffset - before)
		}

	case "down":
		if strings.TrimSpace(m.input.Value()) == "" {
			before := m.timeline.YOffset
			m.timeline.LineDown(4)
			return m, m.accumulateScroll(m.timeline.YOffset - before)
		}

	case "enter":
		if e == nil {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSendPrompt, LocalID: e.Session.LocalID, Text: text})
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '0')
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSelectByNumber, Number: n})
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSpawnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kinds := agentkind.All()
	switch msg.String() {
	case "esc":
		m.spawning = false
		m.input.Focus()
		return m, nil

	case "tab":
		m.spawnKindIdx = (m.spawnKindIdx + 1) % len(kinds)
		return m, nil

	case "enter":
		cwd := strings.TrimSpace(m.spawnCwd.Value())
		if cwd == "" {
			cwd = "."
		}
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSpawn, SpawnKind: kinds[m.spawnKindIdx], SpawnCwd: cwd})
		m.spawning = false
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.spawnCwd, cmd = m.spawnCwd.Update(msg)
	return m, cmd
}

// handlePermissionKey and handleQuestionKey never mutate e.Session
// directly: the Entry came back from a Snapshot read of state owned by
// the dispatcher goroutine, so even cursor movement within the modal is
// submitted as an Action and applied on the dispatcher's own thread.
func (m Model) handlePermissionKey(msg tea.KeyMsg, e *manager.Entry) (tea.Model, tea.Cmd) {
	p := e.Session.PendingPermission
	switch msg.String() {
	case "up", "left":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSelectPermissionOption, LocalID: e.Session.LocalID, SelectDelta: -1})
	case "down", "right":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSelectPermissionOption, LocalID: e.Session.LocalID, SelectDelta: 1})
	case "enter", "y":
		if opt := p.SelectedOption(); opt != nil {
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActResolvePermission, LocalID: e.Session.LocalID, OptionID: opt.OptionID})
		}
	case "esc", "n":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActResolvePermission, LocalID: e.Session.LocalID, OptionID: ""})
	}
	return m, nil
}

func (m Model) handleQuestionKey(msg tea.KeyMsg, e *manager.Entry) (tea.Model, tea.Cmd) {
	q := e.Session.PendingQuestion
	if q.IsFreeText() {
		switch msg.String() {
		case "enter":
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActAnswerQuestion, LocalID: e.Session.LocalID, Answer: q.Answer()})
		case "backspace":
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActQuestionInput, LocalID: e.Session.LocalID, InputOp: dispatch.InputBackspace})
		case "left":
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActQuestionInput, LocalID: e.Session.LocalID, InputOp: dispatch.InputLeft})
		case "right":
			m.disp.Submit(dispatch.Action{Kind: dispatch.ActQuestionInput, LocalID: e.Session.LocalID, InputOp: dispatch.InputRight})
		default:
			if len(msg.Runes) == 1 {
				m.disp.Submit(dispatch.Action{Kind: dispatch.ActQuestionInput, LocalID: e.Session.LocalID, InputOp: dispatch.InputChar, InputRune: msg.Runes[0]})
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "left":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSelectQuestionOption, LocalID: e.Session.LocalID, SelectDelta: -1})
	case "down", "right":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActSelectQuestionOption, LocalID: e.Session.LocalID, SelectDelta: 1})
	case "enter":
		m.disp.Submit(dispatch.Action{Kind: dispatch.ActAnswerQuestion, LocalID: e.Session.LocalID, Answer: q.Answer()})
	}
	return m, nil
}

func lastAgentMessage(e *manager.Entry) string {
	tr := &e.Session.Transcript
	for i := len(tr.Entries) - 1; i >= 0; i-- {
		if tr.Entries[i].Kind == session.EntryAgentMessageChunk {
			return tr.Entries[i].Text
		}
	}
	return ""
}
