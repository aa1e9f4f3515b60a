package wire

import "encoding/json"

// PermissionKind enumerates the option kinds an agent may offer.
type PermissionKind string

const (
	AllowOnce    PermissionKind = "allow_once"
	AllowAlways  PermissionKind = "allow_always"
	RejectOnce   PermissionKind = "reject_once"
	RejectAlways PermissionKind = "reject_always"
)

func (k PermissionKind) IsAllow() bool {
	return k == AllowOnce || k == AllowAlways
}

func (k PermissionKind) IsReject() bool {
	return k == RejectOnce || k == RejectAlways
}

type PermissionOption struct {
	OptionID string         `json:"optionId"`
	Name     string         `json:"name"`
	Kind     PermissionKind `json:"kind"`
}

type ToolCallRef struct {
	ToolCallID string `json:"toolCallId"`
	Title      string `json:"title"`
}

// PermissionRequestParams is the params object of an inbound
// session/request_permission request.
type PermissionRequestParams struct {
	SessionID string             `json:"sessionId"`
	ToolCall  ToolCallRef        `json:"toolCall"`
	Options   []PermissionOption `json:"options"`
}

func ParsePermissionRequest(params json.RawMessage) (PermissionRequestParams, error) {
	var p PermissionRequestParams
	err := json.Unmarshal(params, &p)
	return p, err
}

// PermissionResponse is the result object the client sends back to the
// agent in reply to session/request_permission.
type PermissionResponse struct {
	Outcome  string `json:"outcome"`
	OptionID string `json:"optionId,omitempty"`
}

func SelectedPermission(optionID string) PermissionResponse {
	return PermissionResponse{Outcome: "selected", OptionID: optionID}
}

func CancelledPermission() PermissionResponse {
	return PermissionResponse{Outcome: "cancelled"}
}

// AskUserOption is one choice offered by a session/ask_user request.
type AskUserOption struct {
	OptionID string  `json:"optionId"`
	Label    string  `json:"label"`
	Value    *string `json:"value,omitempty"`
}

// AskUserRequestParams is the params object of an inbound session/ask_user
// request, a Claude-Code extension to the base protocol.
type AskUserRequestParams struct {
	SessionID   string          `json:"sessionId"`
	Question    string          `json:"question"`
	Options     []AskUserOption `json:"options"`
	MultiSelect bool            `json:"multiSelect"`
}

func ParseAskUserRequest(params json.RawMessage) (AskUserRequestParams, error) {
	var p AskUserRequestParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type AskUserResponse struct {
	Outcome string `json:"outcome"`
	Answer  string `json:"answer,omitempty"`
}

func AnsweredQuestion(answer string) AskUserResponse {
	return AskUserResponse{Outcome: "answered", Answer: answer}
}

func CancelledQuestion() AskUserResponse {
	return AskUserResponse{Outcome: "cancelled"}
}
