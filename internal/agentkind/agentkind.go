// Package agentkind holds the registry of agent CLIs this client knows how
// to spawn. Each kind names the binary and flags needed to put that agent
// into ACP mode on stdio.
package agentkind

import "fmt"

// Kind identifies a family of agent subprocess.
type Kind string

const (
	ClaudeCode Kind = "claude-code"
	GeminiCLI  Kind = "gemini-cli"
)

type spec struct {
	displayName string
	command     string
	args        []string
}

var registry = map[Kind]spec{
	ClaudeCode: {displayName: "Claude", command: "claude-code-acp", args: nil},
	GeminiCLI:  {displayName: "Gemini", command: "gemini", args: []string{"--experimental-acp"}},
}

// All returns the known kinds in a stable display order.
func All() []Kind {
	return []Kind{ClaudeCode, GeminiCLI}
}

// DisplayName returns the short name shown in session tabs and the status line.
func (k Kind) DisplayName() string {
	if s, ok := registry[k]; ok {
		return s.displayName
	}
	return string(k)
}

// Command returns the executable to spawn for this kind.
func (k Kind) Command() string {
	return registry[k].command
}

// Args returns the fixed argv this kind needs to speak ACP on stdio.
func (k Kind) Args() []string {
	return registry[k].args
}

// Valid reports whether k is a recognized, spawnable kind.
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// Parse resolves a configured or command-line agent name to a Kind.
func Parse(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := registry[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown agent kind %q", name)
}
