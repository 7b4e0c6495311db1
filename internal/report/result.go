package report

import (
	"fmt"
	"time"

	"github.com/psantana5/pidwait/internal/logging"
	"github.com/psantana5/pidwait/internal/outcome"
)

// Result is the immutable record of one wait. Set once, never change.
type Result struct {
	PID    int             `json:"pid" yaml:"pid"`
	Method string          `json:"method,omitempty" yaml:"method,omitempty"`
	Kernel string          `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Status outcome.Outcome `json:"outcome" yaml:"outcome"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"-" yaml:"-"`
	Seconds   float64       `json:"wait_seconds" yaml:"wait_seconds"`

	// Message is the diagnostic shown on stderr, empty on success.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// ExitCode is this tool's own exit code, not the target's.
	ExitCode int `json:"exit_code" yaml:"exit_code"`
}

// NewResult creates an immutable result
func NewResult(pid int, status outcome.Outcome, method string, startTime, endTime time.Time, exitCode int) *Result {
	d := endTime.Sub(startTime)
	return &Result{
		PID:       pid,
		Method:    method,
		Status:    status,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  d,
		Seconds:   d.Seconds(),
		ExitCode:  exitCode,
	}
}

// WithMessage returns a copy carrying the diagnostic message
func (r *Result) WithMessage(msg string) *Result {
	c := *r
	c.Message = msg
	return &c
}

// WithKernel returns a copy carrying the kernel release seen during validation
func (r *Result) WithKernel(kernel string) *Result {
	c := *r
	c.Kernel = kernel
	return &c
}

// LogSummary emits a grep-able one-line summary at debug level
func (r *Result) LogSummary(l *logging.Logger) {
	method := r.Method
	if method == "" {
		method = "none"
	}
	l.Debug(fmt.Sprintf("PID %d | outcome=%s | method=%s | waited=%.3fs | exit=%d",
		r.PID, r.Status, method, r.Duration.Seconds(), r.ExitCode))
}
