//go:build linux

package observe

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sys/unix"

	"github.com/psantana5/pidwait/internal/outcome"
)

// Handle is a pidfd. It becomes readable once the process terminates
// and stays readable.
type Handle struct {
	pid int
	fd  int
}

// Open acquires a pidfd for pid with default flags.
func Open(pid int) (*Handle, error) {
	// pid_t is 32 bits; anything outside it cannot name a process.
	if pid <= 0 || pid > math.MaxInt32 {
		return nil, outcome.NotFoundError("acquire", pid, unix.ESRCH)
	}

	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil, outcome.NotFoundError("acquire", pid, err)
		}
		return nil, outcome.New(outcome.KindOSFailure, "acquire", pid, "An OS error occurred", err)
	}

	return &Handle{pid: pid, fd: fd}, nil
}

// Wait blocks with no timeout until the pidfd is readable.
func (h *Handle) Wait() error {
	if h.fd < 0 {
		return outcome.New(outcome.KindInternalInconsistency, "wait", h.pid,
			"unexpected: wait on a released handle", nil)
	}

	fds := []unix.PollFd{{Fd: int32(h.fd), Events: unix.POLLIN}}
	for {
		_, err := unix.Poll(fds, -1)
		if err == nil {
			break
		}
		// The Go runtime preempts with signals; EINTR is not a failure.
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return outcome.New(outcome.KindOSFailure, "wait", h.pid, "An OS error occurred", err)
	}

	if fds[0].Revents&unix.POLLIN == 0 {
		return outcome.New(outcome.KindInternalInconsistency, "wait", h.pid,
			fmt.Sprintf("unexpected: handle not ready after wait returned (pidfd %d, revents=%#x)", h.fd, fds[0].Revents), nil)
	}
	return nil
}

// Close releases the pidfd. Safe to call more than once.
func (h *Handle) Close() error {
	if h.fd < 0 {
		return nil
	}
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}

// Method names the wait mechanism
func (h *Handle) Method() string {
	return MethodPidfd
}

// Describe renders the handle for progress output
func (h *Handle) Describe() string {
	return fmt.Sprintf("pidfd (FD: %d)", h.fd)
}
