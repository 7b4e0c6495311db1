package observe

import "time"

// Wait methods reported alongside every result.
const (
	MethodPidfd  = "pidfd"  // Linux pidfd_open + poll, no polling delay
	MethodHandle = "handle" // Windows process handle + WaitForSingleObject
	MethodPoll   = "poll"   // bounded-interval existence check
)

// PollInterval is the fallback check interval on platforms without a
// process lifetime handle.
var PollInterval = 250 * time.Millisecond

// Watcher observes a single PID until it terminates. Nothing else.
type Watcher struct {
	pid    int
	method string

	// OnAcquire runs after the handle is opened and before blocking.
	OnAcquire func(h *Handle)
}

// New creates a watcher for a PID
func New(pid int) *Watcher {
	return &Watcher{pid: pid}
}

// Wait acquires a lifetime handle, blocks until the process terminates,
// and releases the handle on every return path.
func (w *Watcher) Wait() error {
	h, err := Open(w.pid)
	if err != nil {
		return err
	}
	defer h.Close()

	w.method = h.Method()
	if w.OnAcquire != nil {
		w.OnAcquire(h)
	}

	return h.Wait()
}

// Method returns the wait method used, empty until a handle was acquired
func (w *Watcher) Method() string {
	return w.method
}
