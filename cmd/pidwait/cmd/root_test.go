package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/precheck"
)

// runWith executes pidwait with a checker that records whether validation ran.
func runWith(t *testing.T, checker *precheck.Checker, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errb bytes.Buffer
	a := newApp(&out, &errb)
	if checker != nil {
		a.checker = checker
	}
	code = a.run(args)
	return code, out.String(), errb.String()
}

func recordingChecker(called *bool) *precheck.Checker {
	return &precheck.Checker{
		Probe: func() error {
			*called = true
			return nil
		},
	}
}

func TestArgumentCount(t *testing.T) {
	for _, args := range [][]string{{}, {"1", "2"}, {"1", "2", "3"}, {"--help"}, {"-h"}} {
		validated := false
		code, _, stderr := runWith(t, recordingChecker(&validated), args...)

		if code != 1 {
			t.Errorf("args %v: exit code = %d, want 1", args, code)
		}
		if !strings.Contains(stderr, "Usage: pidwait <pid>") {
			t.Errorf("args %v: stderr missing usage: %q", args, stderr)
		}
		if validated {
			t.Errorf("args %v: validation ran", args)
		}
	}
}

func TestNonIntegerArgument(t *testing.T) {
	for _, arg := range []string{"abc", "12x", "1.5", ""} {
		validated := false
		code, stdout, stderr := runWith(t, recordingChecker(&validated), arg)

		if code != 1 {
			t.Errorf("arg %q: exit code = %d, want 1", arg, code)
		}
		if !strings.Contains(stderr, "PID must be an integer") {
			t.Errorf("arg %q: stderr = %q", arg, stderr)
		}
		if stdout != "" {
			t.Errorf("arg %q: unexpected stdout %q", arg, stdout)
		}
		if validated {
			t.Errorf("arg %q: validation ran", arg)
		}
	}
}

func TestHelpExitsAsUsage(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}, {"-h", "1"}} {
		code, stdout, stderr := runWith(t, &precheck.Checker{}, args...)

		if code != 1 {
			t.Errorf("args %v: exit code = %d, want 1", args, code)
		}
		if stdout != "" {
			t.Errorf("args %v: help must not go to stdout: %q", args, stdout)
		}
		if !strings.Contains(stderr, "Exit codes") || !strings.Contains(stderr, "--exit-codes") {
			t.Errorf("args %v: stderr missing help text: %q", args, stderr)
		}
	}
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		arg  string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 42", 42, true},
		{"42\n", 42, true},
		{"+7", 7, true},
		{"-5", -5, true},
		{"1_000", 1000, true},
		{"1_000_000", 1000000, true},
		{"1__0", 0, false},
		{"_1", 0, false},
		{"1_", 0, false},
		{"0x10", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePID(tt.arg)
			if tt.ok {
				if err != nil {
					t.Fatalf("parsePID(%q) error: %v", tt.arg, err)
				}
				if got != tt.want {
					t.Errorf("parsePID(%q) = %d, want %d", tt.arg, got, tt.want)
				}
				return
			}
			if outcome.Classify(err) != outcome.Usage {
				t.Errorf("parsePID(%q) = %d, %v; want usage error", tt.arg, got, err)
			}
		})
	}
}

func TestNegativePIDsLast(t *testing.T) {
	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	root, err := a.rootCommand()
	if err != nil {
		t.Fatalf("rootCommand() error: %v", err)
	}

	tests := []struct {
		desc string
		in   []string
		want []string
	}{
		{"bare", []string{"-5"}, []string{"--", "-5"}},
		{"after flags", []string{"-o", "json", "-5"}, []string{"-o", "json", "--", "-5"}},
		{"bool flag", []string{"-q", "-5"}, []string{"-q", "--", "-5"}},
		{"flag value kept", []string{"--exit-codes", "-5", "7"}, []string{"--exit-codes", "-5", "7"}},
		{"already separated", []string{"--", "-5"}, []string{"--", "-5"}},
		{"before separator", []string{"-5", "--", "x"}, []string{"--", "-5", "x"}},
		{"positive untouched", []string{"42"}, []string{"42"}},
		{"unknown flag untouched", []string{"-x"}, []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := negativePIDsLast(root, tt.in)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") || len(got) != len(tt.want) {
				t.Errorf("negativePIDsLast(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBareNegativePIDIsNotFound(t *testing.T) {
	code, _, stderr := runWith(t, &precheck.Checker{}, "-5")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "PID -5 does not exist") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Contains(stderr, "unknown shorthand flag") {
		t.Errorf("-5 parsed as a flag: %q", stderr)
	}

	code, _, _ = runWith(t, &precheck.Checker{}, "--exit-codes", "distinct", "-5")
	if code != 2 {
		t.Errorf("distinct exit code = %d, want 2", code)
	}
}

func TestFlagsBoundToConfig(t *testing.T) {
	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	root, err := a.rootCommand()
	if err != nil {
		t.Fatalf("rootCommand() error: %v", err)
	}

	for key, name := range flagKeys {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s for %s is not defined", name, key)
		}
		if a.viper.Get(key) == nil {
			t.Errorf("viper key %s is not bound", key)
		}
	}

	if err := root.Flags().Set("output", "json"); err != nil {
		t.Fatalf("Set(output) error: %v", err)
	}
	if got := a.viper.GetString("output"); got != "json" {
		t.Errorf("output = %q, want json from the flag", got)
	}
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	code, _, stderr := runWith(t, &precheck.Checker{}, "--bogus", "1")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Usage: pidwait <pid>") {
		t.Errorf("stderr missing usage: %q", stderr)
	}
}

func TestUnsupportedEnvironment(t *testing.T) {
	checker := &precheck.Checker{
		KernelRelease: func(context.Context) (string, error) { return "4.19.0-old", nil },
		CheckKernel:   true,
	}

	code, stdout, stderr := runWith(t, checker, "1")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error: Linux kernel 5.3 or higher is required for pidfd_open. Current: 4.19.0-old") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Contains(stdout, "Waiting for PID") {
		t.Errorf("acquisition attempted: %q", stdout)
	}

	code, _, _ = runWith(t, checker, "--exit-codes", "distinct", "1")
	if code != 3 {
		t.Errorf("distinct exit code = %d, want 3", code)
	}
}

func TestProbeUnsupported(t *testing.T) {
	checker := &precheck.Checker{
		Probe: func() error {
			return outcome.New(outcome.KindUnsupportedEnvironment, "validate", 0,
				"pidfd_open is not available; Linux 5.3 or higher is required", errors.New("function not implemented"))
		},
	}

	code, _, stderr := runWith(t, checker, "1")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if strings.Contains(stderr, "function not implemented") {
		t.Errorf("unsupported message should not dump the errno: %q", stderr)
	}
	if !strings.Contains(stderr, "Linux 5.3 or higher") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	code, _, stderr := runWith(t, &precheck.Checker{}, "--output", "xml", "1")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "invalid output format") {
		t.Errorf("stderr = %q", stderr)
	}
}
