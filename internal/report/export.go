package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"
)

// Output formats for the final report
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// ValidFormat reports whether format is a known output format
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatYAML, FormatTable:
		return true
	}
	return false
}

// Write renders r in the requested format. Text prints nothing: the
// progress and diagnostic lines already told the whole story.
func Write(w io.Writer, r *Result, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()

	case FormatTable:
		method := r.Method
		if method == "" {
			method = "-"
		}
		table := tablewriter.NewWriter(w)
		table.Header("PID", "Outcome", "Method", "Waited", "Exit")
		if err := table.Append(
			fmt.Sprintf("%d", r.PID),
			r.Status.String(),
			method,
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", r.ExitCode),
		); err != nil {
			return err
		}
		return table.Render()

	case FormatText, "":
		return nil

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteTextfile writes every metric in g to path in Prometheus text format,
// for node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
