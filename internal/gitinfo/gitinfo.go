// Package gitinfo is the narrow external-collaborator seam for git
// branch display. agentmux only needs to know the current branch name
// for a session's cwd, and leaves cloning, creating, or pruning
// worktrees entirely to whatever external tool manages them.
package gitinfo

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Reader resolves the current branch for a working directory. The
// default implementation shells out to git; tests and the renderer can
// substitute a stub.
type Reader interface {
	CurrentBranch(cwd string) (string, bool)
}

// shellReader runs `git symbolic-ref --short HEAD` in cwd, which also
// names the branch of a repository with no commits yet. A detached HEAD,
// a missing
// git binary or a non-repository cwd is not an error here: CurrentBranch
// simply reports not-found so the caller can omit the badge.
type shellReader struct {
	timeout time.Duration
}

// NewShellReader returns the default Reader, bounded by a short timeout
// so a hung git process (e.g. waiting on a credential prompt) can never
// stall the renderer.
func NewShellReader() Reader {
	return shellReader{timeout: 2 * time.Second}
}

func (r shellReader) CurrentBranch(cwd string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "symbolic-ref", "--short", "HEAD")
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" || branch == "HEAD" {
		return "", false
	}
	return branch, true
}
