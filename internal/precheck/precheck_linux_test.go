//go:build linux

package precheck

import (
	"context"
	"testing"
)

func TestNewCheckerOnThisHost(t *testing.T) {
	rep, err := NewChecker().Run(context.Background())
	if err != nil {
		t.Skipf("host cannot run pidfd waits: %v", err)
	}
	if rep.Kernel == "" && len(rep.Warnings) == 0 {
		t.Errorf("expected either a kernel release or a warning, got %+v", rep)
	}
}

func TestUnameRelease(t *testing.T) {
	release, err := unameRelease()
	if err != nil {
		t.Fatalf("unameRelease() error: %v", err)
	}
	if release == "" {
		t.Error("unameRelease() returned empty string")
	}
}
