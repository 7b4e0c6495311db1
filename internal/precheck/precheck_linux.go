//go:build linux

package precheck

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/psantana5/pidwait/internal/outcome"
)

const kernelCheckApplies = true

// probePidfd opens and closes a pidfd on ourselves. ENOSYS means the
// kernel predates pidfd_open; any other failure is left for acquisition
// to report against the real target.
func probePidfd() error {
	fd, err := unix.PidfdOpen(os.Getpid(), 0)
	if err == nil {
		unix.Close(fd)
		return nil
	}
	if errors.Is(err, unix.ENOSYS) {
		return outcome.New(outcome.KindUnsupportedEnvironment, "validate", 0,
			fmt.Sprintf("pidfd_open is not available; Linux %d.%d or higher is required",
				MinKernelMajor, MinKernelMinor), err)
	}
	return nil
}

func unameRelease() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}
