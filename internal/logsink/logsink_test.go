package logsink

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWritesStartupBanner(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "agentmux started")
}

func TestIncomingOutgoingAndNote(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	s.Incoming([]byte(`{"jsonrpc":"2.0","method":"session/update","params":{}}`))
	s.Outgoing([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	s.Note("session 2: Idle -> Prompting")

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "<--"))
	assert.True(t, strings.Contains(content, "-->"))
	assert.True(t, strings.Contains(content, "Idle -> Prompting"))
}

func TestCloseSucceeds(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
