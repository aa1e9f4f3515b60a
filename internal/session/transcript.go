package session

import "encoding/json"

// EntryKind discriminates the closed set of transcript entry types.
type EntryKind int

const (
	EntryUserMessage EntryKind = iota
	EntryAgentMessageChunk
	EntryToolCall
	EntryPlanSnapshot
	EntryModeChange
	EntryError
	EntryPermissionResolved
	EntryQuestionResolved
	EntryFileDiff
)

// ToolCallStatus is the lifecycle status of one tool invocation.
type ToolCallStatus string

const (
	ToolPending   ToolCallStatus = "pending"
	ToolRunning   ToolCallStatus = "running"
	ToolCompleted ToolCallStatus = "completed"
	ToolFailed    ToolCallStatus = "failed"
)

func (s ToolCallStatus) IsTerminal() bool {
	return s == ToolCompleted || s == ToolFailed
}

// Entry is one element of a session's transcript. Only the fields relevant
// to Kind are populated; this mirrors the reference protocol's tagged
// union using Go's conventional "one struct, discriminated by Kind" shape.
type Entry struct {
	Kind EntryKind

	Text string // UserMessage, AgentMessageChunk

	ToolCallID  string // ToolCall
	Title       string
	Description string
	Status      ToolCallStatus
	RawInput    json.RawMessage
	frozen      bool

	PlanEntries []PlanEntry // PlanSnapshot

	Mode string // ModeChange

	ErrorKind    string // Error
	ErrorMessage string

	PermissionDecision string // PermissionResolved, "" means no decision recorded yet

	Question string // QuestionResolved
	Answer   string

	DiffPath string // FileDiff
	DiffText string
}

type PlanEntry struct {
	Content string
	Status  PlanStatus
}

type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
)

// Transcript is the ordered append-only log of a session plus an auxiliary
// index for tool-call reduction, per the "entries keyed by toolCallId"
// design.
type Transcript struct {
	Entries      []Entry
	toolCallIdx  map[string]int
}

func (t *Transcript) ensureIndex() {
	if t.toolCallIdx == nil {
		t.toolCallIdx = make(map[string]int)
	}
}

func (t *Transcript) append(e Entry) *Entry {
	t.Entries = append(t.Entries, e)
	return &t.Entries[len(t.Entries)-1]
}

func (t *Transcript) AppendUserMessage(text string) {
	t.append(Entry{Kind: EntryUserMessage, Text: text})
}

// AppendAgentMessageChunk stores each chunk as its own entry so a streaming
// renderer can show arrival one chunk at a time; adjacent chunks are never
// merged here.
func (t *Transcript) AppendAgentMessageChunk(text string) {
	t.append(Entry{Kind: EntryAgentMessageChunk, Text: text})
}

// UpsertToolCall creates a new ToolCall entry, or updates the existing one
// for toolCallID if it already exists (progressive disclosure: later
// fields fill in blanks, never blank out data already known).
func (t *Transcript) UpsertToolCall(toolCallID, title, description string, rawInput json.RawMessage, status ToolCallStatus) {
	t.ensureIndex()
	if idx, ok := t.toolCallIdx[toolCallID]; ok {
		e := &t.Entries[idx]
		if e.frozen {
			return
		}
		if title != "" {
			e.Title = title
		}
		if description != "" {
			e.Description = description
		}
		if rawInput != nil {
			e.RawInput = rawInput
		}
		if status != "" {
			e.Status = status
			e.frozen = status.IsTerminal()
		}
		return
	}
	if status == "" {
		status = ToolPending
	}
	e := t.append(Entry{
		Kind:        EntryToolCall,
		ToolCallID:  toolCallID,
		Title:       title,
		Description: description,
		RawInput:    rawInput,
		Status:      status,
		frozen:      status.IsTerminal(),
	})
	t.toolCallIdx[toolCallID] = len(t.Entries) - 1
	_ = e
}

// UpdateToolCallStatus applies a tool_call_update by id. Unknown ids are
// dropped; the caller is responsible for logging that case. Idempotent:
// re-applying the same status is a no-op by construction since
// last-writer-wins on the same value yields the same result.
func (t *Transcript) UpdateToolCallStatus(toolCallID string, status ToolCallStatus) bool {
	t.ensureIndex()
	idx, ok := t.toolCallIdx[toolCallID]
	if !ok {
		return false
	}
	e := &t.Entries[idx]
	if e.frozen {
		return true
	}
	if status != "" {
		e.Status = status
		e.frozen = status.IsTerminal()
	}
	return true
}

func (t *Transcript) HasToolCall(toolCallID string) bool {
	t.ensureIndex()
	_, ok := t.toolCallIdx[toolCallID]
	return ok
}

// ReplacePlanSnapshot appends a new PlanSnapshot entry: each plan
// notification replaces the prior snapshot rather than merging with it.
func (t *Transcript) ReplacePlanSnapshot(entries []PlanEntry) {
	t.append(Entry{Kind: EntryPlanSnapshot, PlanEntries: entries})
}

func (t *Transcript) AppendModeChange(mode string) {
	t.append(Entry{Kind: EntryModeChange, Mode: mode})
}

func (t *Transcript) AppendError(kind, message string) {
	t.append(Entry{Kind: EntryError, ErrorKind: kind, ErrorMessage: message})
}

func (t *Transcript) AppendPermissionResolved(toolCallID, decision string) {
	t.append(Entry{Kind: EntryPermissionResolved, ToolCallID: toolCallID, PermissionDecision: decision})
}

func (t *Transcript) AppendQuestionResolved(question, answer string) {
	t.append(Entry{Kind: EntryQuestionResolved, Question: question, Answer: answer})
}

func (t *Transcript) AppendFileDiff(path, diffText string) {
	t.append(Entry{Kind: EntryFileDiff, DiffPath: path, DiffText: diffText})
}

func (t *Transcript) Len() int {
	return len(t.Entries)
}
