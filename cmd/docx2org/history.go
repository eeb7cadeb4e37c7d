// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/SYKhayyat/docx2org/internal/report"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversion runs",
	Long: `History shows the runs recorded in the local history database, newest
first. Use --run with a run ID to print that run's summary and failures, and
add --failures to list only the documents that failed.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	failuresOnly, _ := cmd.Flags().GetBool("failures")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if failuresOnly && runID == "" {
		return fmt.Errorf("--failures requires --run <id>")
	}

	store, err := openHistory(viper.GetString("history.path"))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if failuresOnly {
		failures, err := store.Failures(ctx, runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(w, failures)
		}
		formatFailures(w, runID, failures)
		return nil
	}

	if runID != "" {
		run, err := store.Get(ctx, runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(w, run)
		}
		fmt.Fprintf(w, "Run %s  %s  policy=%s  %s\n\n",
			run.ID, run.Root, run.Policy, run.StartedAt.Local().Format(time.DateTime))
		color := w == io.Writer(os.Stdout) && term.IsTerminal(int(os.Stdout.Fd()))
		return report.Render(w, run.Summary, run.Results, report.Style{Color: color})
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(w, runs)
	}
	formatHistory(w, runs)
	return nil
}

// formatFailures lists the failed documents of one run with their diagnostics.
func formatFailures(w io.Writer, runID string, failures []types.ConversionResult) {
	if len(failures) == 0 {
		fmt.Fprintf(w, "No failures recorded for run %s.\n", runID)
		return
	}
	for _, f := range failures {
		fmt.Fprintf(w, "FAILED %s: %s\n", f.InputPath, f.Diagnostic)
	}
	fmt.Fprintf(w, "\n%d failure(s)\n", len(failures))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatHistory(w io.Writer, runs []types.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-11s  %5s  %5s  %5s  %5s  %s\n",
		"Run", "Started", "Policy", "Total", "Conv", "Skip", "Fail", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-11s  %5d  %5d  %5d  %5d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Policy,
			r.Summary.Total, r.Summary.Converted, r.Summary.Skipped, r.Summary.Failed,
			truncateLeft(r.Root, 40))
	}

	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
}

// truncateLeft keeps the last max runes of s, marking the cut with "...".
func truncateLeft(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return "..." + string(runes[len(runes)-max+3:])
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of runs to list")
	historyCmd.Flags().String("run", "", "show the summary and failures of one run")
	historyCmd.Flags().Bool("failures", false, "with --run, list only the failed documents")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}
