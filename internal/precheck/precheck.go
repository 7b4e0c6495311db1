// Package precheck fails fast when the running system cannot support a
// pidfd-based wait.
package precheck

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/psantana5/pidwait/internal/outcome"
)

// Minimum kernel providing pidfd_open(2).
const (
	MinKernelMajor = 5
	MinKernelMinor = 3
)

// Report carries what validation learned. Warnings are non-fatal.
type Report struct {
	Kernel   string
	Warnings []string
}

// Checker runs the capability and kernel version checks
type Checker struct {
	// KernelRelease returns the running kernel release string.
	KernelRelease func(ctx context.Context) (string, error)
	// Probe reports whether the pidfd syscall is usable. It returns an
	// Unsupported *outcome.Error when it is not.
	Probe func() error
	// CheckKernel enables the kernel version comparison. Only meaningful on Linux.
	CheckKernel bool
}

// NewChecker returns a Checker for the current platform
func NewChecker() *Checker {
	return &Checker{
		KernelRelease: kernelRelease,
		Probe:         probePidfd,
		CheckKernel:   kernelCheckApplies,
	}
}

// Run validates the environment. It never attempts acquisition.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}

	if c.Probe != nil {
		if err := c.Probe(); err != nil {
			return rep, err
		}
	}

	if !c.CheckKernel || c.KernelRelease == nil {
		return rep, nil
	}

	release, err := c.KernelRelease(ctx)
	if err != nil {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("Warning: Could not determine kernel version (%v). Assuming compatible.", err))
		return rep, nil
	}
	rep.Kernel = release

	warning, err := CheckKernel(release)
	if warning != "" {
		rep.Warnings = append(rep.Warnings, warning)
	}
	return rep, err
}

// CheckKernel compares release against the minimum kernel. An unparseable
// release yields a warning and no error.
func CheckKernel(release string) (string, error) {
	major, minor, ok := ParseKernelVersion(release)
	if !ok {
		return fmt.Sprintf("Warning: Could not parse kernel version '%s'. Assuming compatible.", release), nil
	}

	if major < MinKernelMajor || (major == MinKernelMajor && minor < MinKernelMinor) {
		return "", outcome.New(outcome.KindUnsupportedEnvironment, "validate", 0,
			fmt.Sprintf("Linux kernel %d.%d or higher is required for pidfd_open. Current: %s",
				MinKernelMajor, MinKernelMinor, release), nil)
	}
	return "", nil
}

// ParseKernelVersion extracts major.minor from a kernel release such as
// "6.8.0-45-generic". Each of the first two dot-separated components must
// start with a digit; trailing vendor text is ignored.
func ParseKernelVersion(release string) (major, minor int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(release), ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}

	major, ok = leadingInt(parts[0])
	if !ok {
		return 0, 0, false
	}
	minor, ok = leadingInt(parts[1])
	if !ok {
		return 0, 0, false
	}
	return major, minor, true
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func kernelRelease(ctx context.Context) (string, error) {
	release, err := host.KernelVersionWithContext(ctx)
	if err == nil && release != "" {
		return release, nil
	}
	return unameRelease()
}
