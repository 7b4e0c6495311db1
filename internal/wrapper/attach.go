package wrapper

// Observe, never touch: no signals, no reaping, no restarts.

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/psantana5/pidwait/internal/logging"
	"github.com/psantana5/pidwait/internal/observe"
	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/precheck"
	"github.com/psantana5/pidwait/internal/report"
)

// Options tunes a single Attach
type Options struct {
	Checker  *precheck.Checker
	Logger   *logging.Logger
	ExitMode outcome.ExitMode

	// Progress receives the "Waiting for"/"has terminated" lines. nil = quiet.
	Progress io.Writer

	// OnWaiting runs once the handle is held, just before blocking.
	OnWaiting func(method string)
}

// Attach waits for an already-running process it does not own.
// Validate, acquire, wait, report; the handle is released on every path.
// The returned Result is never nil and its ExitCode is final.
func Attach(ctx context.Context, pid int, opts Options) *report.Result {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}
	checker := opts.Checker
	if checker == nil {
		checker = precheck.NewChecker()
	}

	timing := observe.NewTiming()
	watcher := observe.New(pid)

	var kernel string
	rep, err := checker.Run(ctx)
	if rep != nil {
		kernel = rep.Kernel
		for _, w := range rep.Warnings {
			logger.Warn(w)
		}
	}

	if err == nil {
		watcher.OnAcquire = func(h *observe.Handle) {
			timing.MarkAcquired()
			if opts.Progress != nil {
				fmt.Fprintf(opts.Progress, "Waiting for PID %d using %s...\n", pid, h.Describe())
			}
			if opts.OnWaiting != nil {
				opts.OnWaiting(h.Method())
			}
		}
		err = watcher.Wait()
	}
	timing.Done()

	status := outcome.Classify(err)
	code := outcome.ExitCode(status, opts.ExitMode)

	msg := ""
	if status == outcome.Terminated {
		if opts.Progress != nil {
			fmt.Fprintf(opts.Progress, "PID %d has terminated.\n", pid)
		}
	} else {
		msg = Diagnostic(err)
		logger.Error(msg)
	}

	logger.Debug("wait finished", map[string]interface{}{
		"blocked": timing.Blocked().String(),
		"total":   timing.Total().String(),
	})

	result := report.NewResult(pid, status, watcher.Method(), timing.Start, timing.End, code).
		WithMessage(msg).
		WithKernel(kernel)
	result.LogSummary(logger)
	return result
}

// Diagnostic renders err for stderr. Expected outcomes get a plain
// message; OS failures carry the underlying error text verbatim.
func Diagnostic(err error) string {
	var oe *outcome.Error
	if !errors.As(err, &oe) {
		return fmt.Sprintf("An OS error occurred: %v", err)
	}
	if oe.Alarming() {
		return oe.Error()
	}
	return "Error: " + oe.Message
}
