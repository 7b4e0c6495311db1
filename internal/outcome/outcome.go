package outcome

import (
	"errors"
	"fmt"
	"syscall"
)

// Outcome is the shell-visible classification of a single wait.
type Outcome int

const (
	Terminated Outcome = iota
	NotFound
	Unsupported
	OSFailure
	Usage
)

func (o Outcome) String() string {
	switch o {
	case Terminated:
		return "terminated"
	case NotFound:
		return "not_found"
	case Unsupported:
		return "unsupported"
	case OSFailure:
		return "os_failure"
	case Usage:
		return "usage_error"
	default:
		return "unknown"
	}
}

// MarshalText lets Outcome render as its name in JSON and YAML reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Kind categorizes errors for reporting
type Kind int

const (
	KindUsage Kind = iota
	KindUnsupportedEnvironment
	KindProcessNotFound
	KindOSFailure
	KindInternalInconsistency
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindUnsupportedEnvironment:
		return "unsupported_environment"
	case KindProcessNotFound:
		return "process_not_found"
	case KindOSFailure:
		return "os_failure"
	case KindInternalInconsistency:
		return "internal_inconsistency"
	default:
		return "unknown"
	}
}

// Outcome folds a Kind into the four-way result plus usage.
func (k Kind) Outcome() Outcome {
	switch k {
	case KindUsage:
		return Usage
	case KindUnsupportedEnvironment:
		return Unsupported
	case KindProcessNotFound:
		return NotFound
	default:
		return OSFailure
	}
}

// Error wraps a failure with the operation and pid it belongs to
type Error struct {
	Kind    Kind
	Op      string // "validate", "acquire", "wait", "parse"
	PID     int
	Message string
	Err     error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// Alarming reports whether the message should carry the underlying OS error.
// Missing processes and unsupported kernels are expected outcomes.
func (e *Error) Alarming() bool {
	return e.Kind == KindOSFailure || e.Kind == KindInternalInconsistency
}

// New creates a new classified error
func New(kind Kind, op string, pid int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		PID:     pid,
		Message: message,
		Err:     err,
	}
}

// NotFoundError builds the error used when no process with pid exists.
func NotFoundError(op string, pid int, err error) *Error {
	return New(KindProcessNotFound, op, pid,
		fmt.Sprintf("PID %d does not exist or has already terminated", pid), err)
}

// Classify resolves any error returned by the wait path to an Outcome.
// nil means the target terminated.
func Classify(err error) Outcome {
	if err == nil {
		return Terminated
	}

	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind.Outcome()
	}

	if errors.Is(err, syscall.ESRCH) {
		return NotFound
	}

	return OSFailure
}

// ExitMode selects how outcomes map to process exit codes
type ExitMode string

const (
	// ExitCollapsed maps every non-terminated outcome to 1.
	ExitCollapsed ExitMode = "collapsed"
	// ExitDistinct gives each outcome its own code. Zero still means terminated.
	ExitDistinct ExitMode = "distinct"
)

// ParseExitMode validates an exit mode string
func ParseExitMode(s string) (ExitMode, error) {
	switch ExitMode(s) {
	case ExitCollapsed, "":
		return ExitCollapsed, nil
	case ExitDistinct:
		return ExitDistinct, nil
	default:
		return "", fmt.Errorf("invalid exit code mode %q (want collapsed or distinct)", s)
	}
}

// ExitCode maps an outcome to the process exit code.
func ExitCode(o Outcome, mode ExitMode) int {
	if o == Terminated {
		return 0
	}
	if mode != ExitDistinct {
		return 1
	}

	switch o {
	case Usage:
		return 1
	case NotFound:
		return 2
	case Unsupported:
		return 3
	default:
		return 4
	}
}
