package wire

import "encoding/json"

// SessionUpdate is the closed sum type for params.update in a
// session/update notification, discriminated by the sessionUpdate tag.
// An unrecognized tag decodes to Raw rather than failing the session.
type SessionUpdate struct {
	Tag string

	AgentMessageChunk *AgentMessageChunk
	ToolCall          *ToolCallUpdate
	ToolCallUpdate    *ToolCallUpdate
	Plan              *PlanUpdate
	ModeUpdate        *ModeUpdate
	Raw               json.RawMessage
}

type AgentMessageChunk struct {
	Text string
}

// ToolCallUpdate covers both the "tool_call" and "tool_call_update" tags;
// fields irrelevant to one or the other are left zero.
type ToolCallUpdate struct {
	ToolCallID  string
	Title       string
	Description string
	RawInput    json.RawMessage
	Status      string
}

type PlanUpdate struct {
	Entries []PlanEntry
}

type PlanEntry struct {
	Content string     `json:"content"`
	Status  PlanStatus `json:"status"`
}

type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
)

type ModeUpdate struct {
	Mode string
}

type sessionUpdateParams struct {
	SessionID string          `json:"sessionId"`
	Update    json.RawMessage `json:"update"`
}

// SessionUpdateEnvelope is the full params object of a session/update notification.
type SessionUpdateEnvelope struct {
	SessionID string
	Update    SessionUpdate
}

// ParseSessionUpdate decodes a session/update notification's params.
func ParseSessionUpdate(params json.RawMessage) (SessionUpdateEnvelope, error) {
	var p sessionUpdateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return SessionUpdateEnvelope{}, err
	}
	upd, err := parseUpdate(p.Update)
	if err != nil {
		return SessionUpdateEnvelope{}, err
	}
	return SessionUpdateEnvelope{SessionID: p.SessionID, Update: upd}, nil
}

func parseUpdate(raw json.RawMessage) (SessionUpdate, error) {
	var tagged struct {
		SessionUpdate string `json:"sessionUpdate"`
	}
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return SessionUpdate{}, err
	}

	switch tagged.SessionUpdate {
	case "agent_message_chunk":
		var body struct {
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return SessionUpdate{}, err
		}
		return SessionUpdate{
			Tag:               tagged.SessionUpdate,
			AgentMessageChunk: &AgentMessageChunk{Text: body.Content.Text},
		}, nil

	case "tool_call":
		var body struct {
			ToolCallID  string          `json:"toolCallId"`
			Title       string          `json:"title"`
			Description string          `json:"description,omitempty"`
			RawInput    json.RawMessage `json:"rawInput,omitempty"`
			Status      string          `json:"status,omitempty"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return SessionUpdate{}, err
		}
		return SessionUpdate{
			Tag: tagged.SessionUpdate,
			ToolCall: &ToolCallUpdate{
				ToolCallID:  body.ToolCallID,
				Title:       body.Title,
				Description: body.Description,
				RawInput:    body.RawInput,
				Status:      body.Status,
			},
		}, nil

	case "tool_call_update":
		var body struct {
			ToolCallID string `json:"toolCallId"`
			Status     string `json:"status"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return SessionUpdate{}, err
		}
		return SessionUpdate{
			Tag:            tagged.SessionUpdate,
			ToolCallUpdate: &ToolCallUpdate{ToolCallID: body.ToolCallID, Status: body.Status},
		}, nil

	case "plan":
		var body struct {
			Entries []PlanEntry `json:"entries"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return SessionUpdate{}, err
		}
		return SessionUpdate{Tag: tagged.SessionUpdate, Plan: &PlanUpdate{Entries: body.Entries}}, nil

	case "current_mode_update":
		var body struct {
			Mode string `json:"mode"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return SessionUpdate{}, err
		}
		return SessionUpdate{Tag: tagged.SessionUpdate, ModeUpdate: &ModeUpdate{Mode: body.Mode}}, nil

	default:
		return SessionUpdate{Tag: tagged.SessionUpdate, Raw: raw}, nil
	}
}
