// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report summarizes batch results and renders them for the operator.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

// Summarize counts results by status.
func Summarize(results []types.ConversionResult) types.BatchSummary {
	s := types.BatchSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case types.ConversionConverted:
			s.Converted++
		case types.ConversionSkipped:
			s.Skipped++
		case types.ConversionFailed:
			s.Failed++
		}
	}
	return s
}

// Style selects how Render decorates its output.
type Style struct {
	// Color enables ANSI styling. Use it only when writing to a terminal.
	Color bool
}

type palette struct {
	title, ok, warn, bad func(...string) string
}

func plain(strs ...string) string { return strings.Join(strs, " ") }

func newPalette(color bool) palette {
	if !color {
		return palette{title: plain, ok: plain, warn: plain, bad: plain}
	}
	return palette{
		title: lipgloss.NewStyle().Bold(true).Render,
		ok:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}).Render,
		warn:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}).Render,
		bad:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).Bold(true).Render,
	}
}

// Render writes the summary counts followed by one line per failed document.
func Render(w io.Writer, summary types.BatchSummary, results []types.ConversionResult, style Style) error {
	p := newPalette(style.Color)

	lines := []string{
		p.title("Conversion summary"),
		fmt.Sprintf("  Total:     %d", summary.Total),
		p.ok(fmt.Sprintf("  Converted: %d", summary.Converted)),
		p.warn(fmt.Sprintf("  Skipped:   %d", summary.Skipped)),
		p.bad(fmt.Sprintf("  Failed:    %d", summary.Failed)),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if !summary.HasFailures() {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\n"+p.title("Failures")); err != nil {
		return err
	}
	for _, r := range results {
		if r.Status != types.ConversionFailed {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.bad("FAILED"), r.InputPath, r.Diagnostic); err != nil {
			return err
		}
	}
	return nil
}

// WriteYAML writes the full run, including per-document results, to path.
func WriteYAML(path string, run types.Run) error {
	data, err := yaml.Marshal(&run)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
