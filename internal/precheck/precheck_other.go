//go:build !linux

package precheck

import "errors"

// Non-Linux platforms use their own wait backend, so there is nothing to probe
// and kernel numbering is unrelated to pidfd support.
const kernelCheckApplies = false

func probePidfd() error {
	return nil
}

func unameRelease() (string, error) {
	return "", errors.New("kernel release unavailable on this platform")
}
