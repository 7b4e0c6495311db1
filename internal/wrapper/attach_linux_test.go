//go:build linux

package wrapper

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/psantana5/pidwait/internal/observe"
	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/precheck"
)

func TestAttachObservesTermination(t *testing.T) {
	child := exec.Command("sleep", "30")
	if err := child.Start(); err != nil {
		t.Skipf("cannot start sleep: %v", err)
	}
	defer child.Wait()

	var progress, diag bytes.Buffer
	var method string

	done := make(chan struct{})
	var status outcome.Outcome
	var code int
	go func() {
		defer close(done)
		r := Attach(context.Background(), child.Process.Pid, Options{
			Checker:  &precheck.Checker{},
			Logger:   quietLogger(&diag),
			Progress: &progress,
			OnWaiting: func(m string) {
				method = m
				child.Process.Kill()
			},
		})
		status, code = r.Status, r.ExitCode
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Attach did not return after the target was killed")
	}

	if status != outcome.Terminated || code != 0 {
		t.Fatalf("status=%v code=%d diag=%q", status, code, diag.String())
	}
	if method != observe.MethodPidfd {
		t.Errorf("method = %q, want %q", method, observe.MethodPidfd)
	}
	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Waiting for PID ") || !strings.HasSuffix(lines[1], "has terminated.") {
		t.Errorf("progress = %q", progress.String())
	}
}
