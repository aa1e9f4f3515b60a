package host

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"agentmux/internal/conn"
	"agentmux/internal/wire"
)

func (h *Handler) handleReadTextFile(sessionLocalID int, req wire.Request) wire.Response {
	params, err := wire.ParseFSReadTextFile(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	if !h.policy.AllowsPath(sessionLocalID, params.Path) {
		return errorResult(req.ID, wire.CodeApplication, "permission_denied", "permission required to read "+params.Path)
	}

	raw, err := os.ReadFile(params.Path)
	if err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", "failed to read file: "+err.Error())
	}
	content := string(raw)
	if params.Line != nil || params.Limit != nil {
		content = sliceLines(content, params.Line, params.Limit)
	}

	resp, err := wire.NewResultResponse(req.ID, wire.FSReadTextFileResult{Content: content})
	if err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", err.Error())
	}
	return resp
}

func sliceLines(content string, line, limit *int) string {
	lines := strings.Split(content, "\n")
	start := 0
	if line != nil && *line > 1 {
		start = *line - 1
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := len(lines)
	if limit != nil {
		if e := start + *limit; e < end {
			end = e
		}
	}
	return strings.Join(lines[start:end], "\n")
}

func (h *Handler) handleWriteTextFile(sessionLocalID int, req wire.Request) wire.Response {
	params, err := wire.ParseFSWriteTextFile(req.Params)
	if err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, err.Error())
	}
	if !h.policy.AllowsPath(sessionLocalID, params.Path) {
		return errorResult(req.ID, wire.CodeApplication, "permission_denied", "permission required to write "+params.Path)
	}

	oldContent, _ := os.ReadFile(params.Path) // absent file reads as empty old content

	if err := writeAtomic(params.Path, []byte(params.Content)); err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", "failed to write file: "+err.Error())
	}

	diffText := unifiedDiff(string(oldContent), params.Content, params.Path)
	if h.events != nil {
		h.events <- conn.Event{
			Kind:           conn.EventFileWritten,
			SessionLocalID: sessionLocalID,
			FilePath:       params.Path,
			FileDiff:       diffText,
		}
	}

	resp, err := wire.NewResultResponse(req.ID, wire.FSWriteTextFileResult{Success: true})
	if err != nil {
		return errorResult(req.ID, wire.CodeApplication, "io_error", err.Error())
	}
	return resp
}

// writeAtomic writes to a temp file in the same directory then renames
// over the destination, so a crash mid-write never leaves a truncated
// file in place.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".agentmux-write-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func unifiedDiff(old, new, path string) string {
	if old == new {
		return "No changes"
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "No changes"
	}
	return text
}
