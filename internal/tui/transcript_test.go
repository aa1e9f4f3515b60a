package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"agentmux/internal/session"
)

func TestRenderTranscriptIncludesUserAndAgentText(t *testing.T) {
	th := newTheme()
	var tr session.Transcript
	tr.AppendUserMessage("hello there")
	tr.AppendAgentMessageChunk("hi back")

	out := renderTranscript(&th, &tr)
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "hi back")
}

func TestRenderTranscriptEmptyShowsPlaceholder(t *testing.T) {
	th := newTheme()
	var tr session.Transcript
	out := renderTranscript(&th, &tr)
	assert.Contains(t, out, "no activity yet")
}

func TestRenderTranscriptToolCallShowsStatus(t *testing.T) {
	th := newTheme()
	var tr session.Transcript
	tr.UpsertToolCall("tc1", "Edit file", "updating main.go", nil, session.ToolRunning)

	out := renderTranscript(&th, &tr)
	assert.True(t, strings.Contains(out, "Edit file"))
	assert.True(t, strings.Contains(out, "running"))
}

func TestRenderPlanSidebarPicksLatestSnapshot(t *testing.T) {
	th := newTheme()
	var tr session.Transcript
	tr.ReplacePlanSnapshot([]session.PlanEntry{{Content: "step one", Status: session.PlanPending}})
	tr.ReplacePlanSnapshot([]session.PlanEntry{{Content: "step two", Status: session.PlanInProgress}})

	out := renderPlanSidebar(&th, &tr)
	assert.Contains(t, out, "step two")
	assert.NotContains(t, out, "step one")
}

func TestRenderPlanSidebarEmptyShowsPlaceholder(t *testing.T) {
	th := newTheme()
	var tr session.Transcript
	out := renderPlanSidebar(&th, &tr)
	assert.Contains(t, out, "no plan yet")
}
