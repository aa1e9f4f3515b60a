// Package logsink is the single append-only log file agentmux writes for
// one run: every raw inbound/outbound JSON-RPC line plus short
// event-processing notes, grounded on the original amux's log.rs
// behavior of one timestamped file per run under a per-user log
// directory.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/pretty"
)

// Sink is a single run's log file. It is safe for concurrent use: every
// connection and the dispatcher all write lines to the same sink.
type Sink struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	watcher *fsnotify.Watcher
	closeCh chan struct{}
}

// Open creates dir if needed and opens a new log file named by the
// current run's start time, mirroring log.rs's
// "amux_<timestamp>_<session>.log" naming (without the random session
// suffix, since agentmux has no single-session identity at the process
// level the way amux's global SESSION_ID did).
func Open(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	name := fmt.Sprintf("agentmux_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	s := &Sink{path: path, file: f, closeCh: make(chan struct{})}

	if w, err := fsnotify.NewWatcher(); err == nil {
		if err := w.Add(path); err == nil {
			s.watcher = w
			go s.watchRotation()
		} else {
			w.Close()
		}
	}

	s.writeLine(fmt.Sprintf("=== agentmux started, log %s ===", path))
	return s, nil
}

// Path returns the file path this sink is currently writing to.
func (s *Sink) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Note appends a short timestamped event-processing note, e.g.
// "session 2: Idle -> Prompting".
func (s *Sink) Note(msg string) {
	s.writeLine(msg)
}

// Incoming logs a raw line received from an agent subprocess's stdout,
// pretty-printing the JSON payload for readability without altering
// what was actually received on the wire.
func (s *Sink) Incoming(line []byte) {
	s.writeLine("<-- " + formatLine(line))
}

// Outgoing logs a raw line written to an agent subprocess's stdin.
func (s *Sink) Outgoing(line []byte) {
	s.writeLine("--> " + formatLine(line))
}

func formatLine(line []byte) string {
	out := pretty.PrettyOptions(line, &pretty.Options{Width: 120, Indent: "  "})
	return string(out)
}

func (s *Sink) writeLine(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(s.file, "[%s] %s\n", ts, msg)
}

// watchRotation reopens the log file if it's removed or renamed out
// from under the process (an operator deleting or logrotate moving a
// live log); truncation in place is not watched. It mirrors the watch-and-reopen idiom used for working-tree
// file watches elsewhere in the stack.
func (s *Sink) watchRotation() {
	for {
		select {
		case <-s.closeCh:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				s.reopen()
			}
		case <-s.watcher.Errors:
			// Transient watcher errors are not fatal to logging; the
			// next write still lands on whatever file handle is open.
		}
	}
}

func (s *Sink) reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.file = nil
		return
	}
	s.file = f
	if s.watcher != nil {
		s.watcher.Add(s.path)
	}
}

// Close stops the rotation watcher and closes the file.
func (s *Sink) Close() error {
	close(s.closeCh)
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
