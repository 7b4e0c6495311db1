package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/pidwait/internal/config"
	"github.com/psantana5/pidwait/internal/logging"
	"github.com/psantana5/pidwait/internal/observe"
	"github.com/psantana5/pidwait/internal/outcome"
	"github.com/psantana5/pidwait/internal/report"
	"github.com/psantana5/pidwait/internal/statusserver"
	"github.com/psantana5/pidwait/internal/wrapper"
)

func (a *app) runWait(c *cobra.Command, args []string) error {
	pid, err := parsePID(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return outcome.New(outcome.KindUsage, "config", pid, fmt.Sprintf("Error: %v", err), err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.JSONLogs())
	logger.SetOutput(a.stderr)
	// Text diagnostics stay plain one-liners; the pid is already in them.
	if cfg.JSONLogs() {
		logger = logger.WithField("pid", pid)
	}

	observe.PollInterval = cfg.PollInterval
	metrics := report.NewMetrics()

	opts := wrapper.Options{
		Checker:  a.checker,
		Logger:   logger,
		ExitMode: cfg.ExitCodes,
	}
	if !cfg.Quiet {
		opts.Progress = a.stdout
	}

	var status *statusserver.Server
	if cfg.StatusAddr != "" {
		status = startStatusServer(cfg.StatusAddr, pid, metrics, logger)
	}
	if status != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			status.Shutdown(ctx)
		}()
		opts.OnWaiting = status.SetWaiting
	}

	result := wrapper.Attach(c.Context(), pid, opts)

	metrics.RecordResult(result)
	if status != nil {
		status.SetDone(result.Status.String())
	}
	if cfg.MetricsFile != "" {
		if err := report.WriteTextfile(cfg.MetricsFile, metrics.Registry()); err != nil {
			logger.Warn(fmt.Sprintf("Warning: %v", err))
		}
	}

	writeReport(a.stdout, result, cfg.Output, logger)

	a.exitCode = result.ExitCode
	return nil
}

// startStatusServer returns nil when the address cannot be bound; the wait
// goes ahead without it.
func startStatusServer(addr string, pid int, metrics *report.Metrics, logger *logging.Logger) *statusserver.Server {
	s := statusserver.New(pid, metrics.Registry())
	s.OnError = func(err error) {
		logger.Warn(fmt.Sprintf("Warning: status server stopped: %v", err))
	}
	if err := s.Start(addr); err != nil {
		logger.Warn(fmt.Sprintf("Warning: could not start status server on %s: %v", addr, err))
		return nil
	}
	logger.Debug(fmt.Sprintf("status server listening on %s", s.Addr()))
	return s
}

func writeReport(w io.Writer, r *report.Result, format string, logger *logging.Logger) {
	if err := report.Write(w, r, format); err != nil {
		logger.Warn(fmt.Sprintf("Warning: failed to write report: %v", err))
	}
}
