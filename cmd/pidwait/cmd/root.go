package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/precheck"
)

const usageLine = "Usage: pidwait <pid>"

// flagKeys maps viper config keys to the flags that override them.
var flagKeys = map[string]string{
	"exit_codes":    "exit-codes",
	"output":        "output",
	"log_level":     "log-level",
	"log_format":    "log-format",
	"metrics_file":  "metrics-file",
	"status_addr":   "status-addr",
	"poll_interval": "poll-interval",
	"quiet":         "quiet",
}

// app carries one invocation's streams and collaborators
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	viper   *viper.Viper
	checker *precheck.Checker

	cfgFile  string
	exitCode int
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		viper:   viper.New(),
		checker: precheck.NewChecker(),
	}
}

// Execute runs pidwait with the process arguments and returns the exit code
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs pidwait with args and returns the exit code. Nothing escapes as
// a panic or an unreported error.
func Run(args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr).run(args)
}

func (a *app) run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(a.stderr, "An internal error occurred: %v\n", r)
			code = outcome.ExitCode(outcome.OSFailure, outcome.ExitCollapsed)
		}
	}()

	root, err := a.rootCommand()
	if err != nil {
		fmt.Fprintf(a.stderr, "An internal error occurred: %v\n", err)
		return outcome.ExitCode(outcome.OSFailure, outcome.ExitCollapsed)
	}
	root.SetArgs(negativePIDsLast(root, args))
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.Execute(); err != nil {
		var oe *outcome.Error
		if errors.As(err, &oe) && oe.Kind == outcome.KindUsage {
			fmt.Fprintln(a.stderr, oe.Message)
			if oe.Op == "args" {
				fmt.Fprint(a.stderr, root.UsageString())
			}
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return outcome.ExitCode(outcome.Usage, outcome.ExitCollapsed)
	}
	return a.exitCode
}

func (a *app) rootCommand() (*cobra.Command, error) {
	root := &cobra.Command{
		Use:   "pidwait [flags] <pid>",
		Short: "Block until a process exits",
		Long: `pidwait blocks until the process with the given PID terminates, then exits 0.

The target does not need to be a child of pidwait. On Linux the wait uses a
pidfd and poll(2), so there is no polling delay and no CPU use while blocked.
Windows waits on a process handle. Other platforms fall back to checking the
process table every --poll-interval.

Exit codes (default "collapsed" mode):
  0  the process terminated
  1  anything else: bad arguments, no such process, unsupported kernel, OS error

With --exit-codes distinct: 1 usage, 2 not found, 3 unsupported, 4 OS failure.
--help is a usage request and exits 1, so 0 always means the target exited.

A negative PID is accepted and reports "does not exist"; "pidwait -5" and
"pidwait -- -5" behave the same.

Example:
  sleep 60 & pidwait $!
  pidwait --output json 4242
  pidwait --metrics-file /var/lib/node_exporter/pidwait.prom 4242`,
		Args:          a.validateArgs,
		RunE:          a.runWait,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		fmt.Fprintf(a.stderr, "%s\n\n%s\n\n%s", usageLine, c.Long, c.UsageString())
		a.exitCode = outcome.ExitCode(outcome.Usage, outcome.ExitCollapsed)
	})

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return outcome.New(outcome.KindUsage, "args", 0, fmt.Sprintf("%s\nError: %v", usageLine, err), err)
	})

	flags := root.Flags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.pidwait/config.yaml)")
	flags.String("exit-codes", "collapsed", "exit code mapping: collapsed or distinct")
	flags.StringP("output", "o", "text", "final report format: text, json, yaml or table")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("metrics-file", "", "write a Prometheus textfile here after the wait")
	flags.String("status-addr", "", "serve /healthz, /status and /metrics on this address while waiting")
	flags.Duration("poll-interval", 0, "check interval on platforms without a process handle (default 250ms)")
	flags.BoolP("quiet", "q", false, "suppress progress lines")

	for key, name := range flagKeys {
		if err := a.viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("binding --%s to %s: %w", name, key, err)
		}
	}

	return root, nil
}

// negativePIDsLast moves bare negative integers behind "--" so that
// "pidwait -5" reaches acquisition instead of failing as a shorthand flag.
// Values of flags that take one stay where they are.
func negativePIDsLast(c *cobra.Command, args []string) []string {
	var head, moved []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if len(moved) == 0 {
				return args
			}
			out := append(append(head, "--"), moved...)
			return append(out, args[i+1:]...)
		case isNegativeInt(arg):
			moved = append(moved, arg)
		default:
			head = append(head, arg)
			if takesValue(c, arg) && i+1 < len(args) {
				i++
				head = append(head, args[i])
			}
		}
	}
	if len(moved) == 0 {
		return args
	}
	return append(append(head, "--"), moved...)
}

func isNegativeInt(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(arg)
	return err == nil
}

// takesValue reports whether arg is a flag whose value is the next argument
func takesValue(c *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	switch {
	case strings.HasPrefix(arg, "--"):
		if f := c.Flags().Lookup(arg[2:]); f != nil {
			return f.NoOptDefVal == ""
		}
	case len(arg) == 2 && arg[0] == '-':
		if f := c.Flags().ShorthandLookup(arg[1:]); f != nil {
			return f.NoOptDefVal == ""
		}
	}
	return false
}

func (a *app) validateArgs(c *cobra.Command, args []string) error {
	if len(args) != 1 {
		return outcome.New(outcome.KindUsage, "args", 0, usageLine, nil)
	}
	return nil
}

// parsePID accepts a base-10 integer with optional surrounding whitespace
// and "_" digit separators. Range and existence are decided by acquisition.
func parsePID(arg string) (int, error) {
	pid, err := strconv.Atoi(stripDigitSeparators(strings.TrimSpace(arg)))
	if err != nil {
		return 0, outcome.New(outcome.KindUsage, "parse", 0,
			fmt.Sprintf("Error: PID must be an integer, got %q", arg), err)
	}
	return pid, nil
}

// stripDigitSeparators drops "_" only when every one sits between two
// digits; anything else is returned unchanged and fails to parse.
func stripDigitSeparators(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return s
		}
	}
	return strings.ReplaceAll(s, "_", "")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
