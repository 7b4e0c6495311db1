//go:build windows

package observe

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/psantana5/pidwait/internal/outcome"
)

// Handle is a SYNCHRONIZE process handle. It is signaled once the process
// terminates.
type Handle struct {
	pid    int
	h      windows.Handle
	closed bool
}

// Open acquires a process handle for pid.
func Open(pid int) (*Handle, error) {
	if pid <= 0 {
		return nil, outcome.NotFoundError("acquire", pid, nil)
	}

	h, err := windows.OpenProcess(windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		// OpenProcess reports a missing pid as an invalid parameter.
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return nil, outcome.NotFoundError("acquire", pid, err)
		}
		return nil, outcome.New(outcome.KindOSFailure, "acquire", pid, "An OS error occurred", err)
	}

	return &Handle{pid: pid, h: h}, nil
}

// Wait blocks with no timeout until the process handle is signaled.
func (h *Handle) Wait() error {
	if h.closed {
		return outcome.New(outcome.KindInternalInconsistency, "wait", h.pid,
			"unexpected: wait on a released handle", nil)
	}

	s, err := windows.WaitForSingleObject(h.h, windows.INFINITE)
	if err != nil {
		return outcome.New(outcome.KindOSFailure, "wait", h.pid, "An OS error occurred", err)
	}
	if s != uint32(windows.WAIT_OBJECT_0) {
		return outcome.New(outcome.KindInternalInconsistency, "wait", h.pid,
			fmt.Sprintf("unexpected: handle not ready after wait returned (WaitForSingleObject=%#x)", s), nil)
	}
	return nil
}

// Close releases the handle. Safe to call more than once.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return windows.CloseHandle(h.h)
}

// Method names the wait mechanism
func (h *Handle) Method() string {
	return MethodHandle
}

// Describe renders the handle for progress output
func (h *Handle) Describe() string {
	return fmt.Sprintf("process handle (%#x)", uintptr(h.h))
}
