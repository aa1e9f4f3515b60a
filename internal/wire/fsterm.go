package wire

import "encoding/json"

// FSReadTextFileParams is the params object of an inbound fs/read_text_file request.
type FSReadTextFileParams struct {
	SessionID string `json:"sessionId"`
	Path      string `json:"path"`
	Line      *int   `json:"line,omitempty"`
	Limit     *int   `json:"limit,omitempty"`
}

func ParseFSReadTextFile(params json.RawMessage) (FSReadTextFileParams, error) {
	var p FSReadTextFileParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type FSReadTextFileResult struct {
	Content string `json:"content"`
}

// FSWriteTextFileParams is the params object of an inbound fs/write_text_file request.
type FSWriteTextFileParams struct {
	SessionID string `json:"sessionId"`
	Path      string `json:"path"`
	Content   string `json:"content"`
}

func ParseFSWriteTextFile(params json.RawMessage) (FSWriteTextFileParams, error) {
	var p FSWriteTextFileParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type FSWriteTextFileResult struct {
	Success bool `json:"success"`
}

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type TerminalCreateParams struct {
	SessionID       string   `json:"sessionId"`
	Command         string   `json:"command"`
	Args            []string `json:"args,omitempty"`
	Cwd             *string  `json:"cwd,omitempty"`
	Env             []EnvVar `json:"env,omitempty"`
	OutputByteLimit *int     `json:"outputByteLimit,omitempty"`
}

func ParseTerminalCreate(params json.RawMessage) (TerminalCreateParams, error) {
	var p TerminalCreateParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type TerminalCreateResult struct {
	TerminalID string `json:"terminalId"`
}

type TerminalOutputParams struct {
	SessionID  string `json:"sessionId"`
	TerminalID string `json:"terminalId"`
}

func ParseTerminalOutput(params json.RawMessage) (TerminalOutputParams, error) {
	var p TerminalOutputParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type TerminalOutputResult struct {
	Output   string `json:"output"`
	ExitCode *int   `json:"exitCode"`
}

type TerminalWriteParams struct {
	SessionID  string `json:"sessionId"`
	TerminalID string `json:"terminalId"`
	Data       string `json:"data"`
}

func ParseTerminalWrite(params json.RawMessage) (TerminalWriteParams, error) {
	var p TerminalWriteParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type TerminalWaitParams struct {
	SessionID  string `json:"sessionId"`
	TerminalID string `json:"terminalId"`
	TimeoutMs  *uint64 `json:"timeoutMs,omitempty"`
}

func ParseTerminalWait(params json.RawMessage) (TerminalWaitParams, error) {
	var p TerminalWaitParams
	err := json.Unmarshal(params, &p)
	return p, err
}

type TerminalWaitResult struct {
	ExitCode *int `json:"exitCode"`
	TimedOut bool `json:"timedOut"`
}

type TerminalKillParams struct {
	SessionID  string `json:"sessionId"`
	TerminalID string `json:"terminalId"`
}

func ParseTerminalKill(params json.RawMessage) (TerminalKillParams, error) {
	var p TerminalKillParams
	err := json.Unmarshal(params, &p)
	return p, err
}
