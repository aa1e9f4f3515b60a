// Package dispatch runs the single-threaded cooperative event loop that
// owns every session's state: it selects over user intent and agent
// events, turns each into a list of Actions, and applies them.
package dispatch

import "agentmux/internal/agentkind"

// ActionKind discriminates the closed set of effects a user or timer
// event can produce.
type ActionKind int

const (
	ActQuit ActionKind = iota
	ActSpawn
	ActKill
	ActClear
	ActDuplicate
	ActFocus
	ActNextSession
	ActPrevSession
	ActSelectByNumber
	ActSendPrompt
	ActResolvePermission
	ActAnswerQuestion
	ActScroll
	ActCyclePermissionMode
	ActCycleModel
	ActCycleSort
	ActSelectPermissionOption
	ActSelectQuestionOption
	ActQuestionInput
)

// InputOp discriminates the free-text editing operations ActQuestionInput
// carries, mirroring the PendingQuestion.Input* methods it drives.
type InputOp int

const (
	InputChar InputOp = iota
	InputBackspace
	InputLeft
	InputRight
)

// Action is the closed tagged set the event dispatcher reduces every
// user-intent or timer event into before applying it.
type Action struct {
	Kind ActionKind

	LocalID int

	SpawnKind agentkind.Kind
	SpawnCwd  string

	Text string

	// OptionID empty means "cancel" for ActResolvePermission.
	OptionID string
	Answer   string

	ScrollDelta int
	Number      int

	// SelectDelta is +1/-1, used by ActSelectPermissionOption and
	// ActSelectQuestionOption to move the modal's highlighted option.
	SelectDelta int

	// InputOp and InputRune drive ActQuestionInput's free-text editing.
	InputOp   InputOp
	InputRune rune
}
