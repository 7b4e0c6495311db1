//go:build !linux && !windows

package observe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/psantana5/pidwait/internal/outcome"
)

// Handle has no kernel object behind it here. Wait re-checks the process
// table every PollInterval, so termination is seen up to one interval late.
type Handle struct {
	pid      int
	interval time.Duration
	closed   bool
}

// Open confirms pid exists and returns a polling handle.
func Open(pid int) (*Handle, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return nil, outcome.NotFoundError("acquire", pid, nil)
	}

	exists, err := process.PidExistsWithContext(context.Background(), int32(pid))
	if err != nil {
		return nil, outcome.New(outcome.KindOSFailure, "acquire", pid, "An OS error occurred", err)
	}
	if !exists {
		return nil, outcome.NotFoundError("acquire", pid, nil)
	}

	interval := PollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Handle{pid: pid, interval: interval}, nil
}

// Wait polls until the pid disappears.
func (h *Handle) Wait() error {
	if h.closed {
		return outcome.New(outcome.KindInternalInconsistency, "wait", h.pid,
			"unexpected: wait on a released handle", nil)
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	ctx := context.Background()
	for range ticker.C {
		exists, err := process.PidExistsWithContext(ctx, int32(h.pid))
		if err != nil {
			return outcome.New(outcome.KindOSFailure, "wait", h.pid, "An OS error occurred", err)
		}
		if !exists {
			return nil
		}
	}
	return nil
}

// Close marks the handle released
func (h *Handle) Close() error {
	h.closed = true
	return nil
}

// Method names the wait mechanism
func (h *Handle) Method() string {
	return MethodPoll
}

// Describe renders the handle for progress output
func (h *Handle) Describe() string {
	return fmt.Sprintf("polling (every %s)", h.interval)
}
