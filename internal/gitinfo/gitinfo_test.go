package gitinfo

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBranchOfFreshRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init", "-b", "main")
	run("config", "user.email", "a@example.com")
	run("config", "user.name", "a")

	r := NewShellReader()
	branch, ok := r.CurrentBranch(dir)
	assert.True(t, ok)
	assert.Equal(t, "main", branch)
}

func TestCurrentBranchNonRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	r := NewShellReader()
	_, ok := r.CurrentBranch(t.TempDir())
	assert.False(t, ok)
}
