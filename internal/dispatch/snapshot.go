package dispatch

import "agentmux/internal/manager"

// Snapshot is the immutable view the renderer reads; Revision increases
// monotonically every time the dispatcher applies a batch of actions or
// events, so the renderer can tell whether it has already drawn the
// current state.
type Snapshot struct {
	Revision uint64
	Entries  []*manager.Entry
	Focused  int
}

// snapshotLocked builds a Snapshot from the dispatcher's current state.
// Must only be called from the Run loop's own goroutine, since it reads
// the manager's entries without any lock; that state is owned solely by
// the dispatcher thread.
func (d *Dispatcher) snapshotLocked() Snapshot {
	return Snapshot{
		Revision: d.revision,
		Entries:  d.mgr.Entries(),
		Focused:  d.mgr.FocusedIndex(),
	}
}

// Snapshot is the renderer-safe way to read current state: it asks the
// Run loop (running on its own goroutine) to hand back a Snapshot over a
// reply channel instead of reading dispatcher/manager fields directly,
// so the renderer never touches state the dispatcher thread owns. It
// blocks until the loop services the request, which happens promptly
// since the loop never blocks for long between select iterations.
func (d *Dispatcher) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case d.snapshotReq <- reply:
	default:
		// Request queue momentarily full (renderer polling faster than
		// the loop drains it); fall back to a blocking send so no
		// snapshot request is ever silently dropped.
		d.snapshotReq <- reply
	}
	return <-reply
}
