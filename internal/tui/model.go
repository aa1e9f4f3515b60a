// Package tui is the bubbletea renderer: a thin read-only view over
// dispatch.Dispatcher's Snapshot plus a stream of Actions it submits back.
// It never mutates session or manager state directly: all of that is
// owned by the single dispatcher goroutine, so the model only holds
// input-widget state and the current Snapshot copy.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agentmux/internal/clipboard"
	"agentmux/internal/dispatch"
	"agentmux/internal/manager"
)

// Model is the bubbletea program's root model.
type Model struct {
	disp *dispatch.Dispatcher
	clip clipboard.Writer

	theme theme

	width, height int

	input    textinput.Model
	timeline viewport.Model
	sidebar  viewport.Model
	spinner  spinner.Model

	snap dispatch.Snapshot

	spawning     bool
	spawnKindIdx int
	spawnCwd     textinput.Model

	statusLine string

	// lastFocusedID and the pending-scroll fields coalesce scroll input:
	// wheel/key scroll events accumulate locally and are folded into one
	// ActScroll per debounce window instead of one per line, with the
	// persisted offset restored when focus returns to a session.
	lastFocusedID      int
	pendingScrollDelta int
	scrollArmed        bool
}

type tickMsg time.Time

type scrollFlushMsg struct{}

const scrollDebounce = 40 * time.Millisecond

// accumulateScroll folds delta into the pending scroll buffer and arms a
// debounce flush if one isn't already scheduled.
func (m *Model) accumulateScroll(delta int) tea.Cmd {
	if delta == 0 {
		return nil
	}
	m.pendingScrollDelta += delta
	if m.scrollArmed {
		return nil
	}
	m.scrollArmed = true
	return tea.Tick(scrollDebounce, func(time.Time) tea.Msg { return scrollFlushMsg{} })
}

func New(disp *dispatch.Dispatcher, clip clipboard.Writer) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 8000
	input.Placeholder = "message the focused agent..."
	input.Focus()

	spawnCwd := textinput.New()
	spawnCwd.Prompt = "cwd: "
	spawnCwd.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = newTheme().status

	tl := viewport.New(0, 0)
	tl.MouseWheelEnabled = true
	tl.MouseWheelDelta = 3
	sb := viewport.New(0, 0)
	sb.MouseWheelEnabled = true
	sb.MouseWheelDelta = 3

	return Model{
		disp:          disp,
		clip:          clip,
		theme:         newTheme(),
		input:         input,
		timeline:      tl,
		sidebar:       sb,
		spinner:       sp,
		spawnCwd:      spawnCwd,
		statusLine:    "no sessions yet; ctrl+n to spawn one",
		lastFocusedID: -1,
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickEvery(150*time.Millisecond))
}

func (m *Model) refreshSnapshot() {
	m.snap = m.disp.Snapshot()
}

func (m *Model) focusedEntry() *manager.Entry {
	if m.snap.Focused < 0 || m.snap.Focused >= len(m.snap.Entries) {
		return nil
	}
	return m.snap.Entries[m.snap.Focused]
}
