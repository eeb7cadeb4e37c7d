// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/SYKhayyat/docx2org/internal/conflict"
	"github.com/SYKhayyat/docx2org/internal/convert"
	"github.com/SYKhayyat/docx2org/internal/engine"
	"github.com/SYKhayyat/docx2org/internal/history"
	"github.com/SYKhayyat/docx2org/internal/report"
	"github.com/SYKhayyat/docx2org/internal/resolve"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	root := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := buildLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Both fatal preconditions are checked before any file is touched.
	if err := resolve.Check(root); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.Detect(ctx, cfg.Engine.Path)
	if err != nil {
		return err
	}
	logger.Debug("engine detected", "name", eng.Name(), "version", eng.Version())

	policy, _ := types.ParseConflictPolicy(cfg.Batch.OnConflict)
	var prompter conflict.Prompter
	if policy == types.PolicyInteractive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			logger.Debug("stdin is not a terminal; conflict answers are read from the input stream")
		}
		prompter = conflict.NewTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	converter := convert.NewPandocConverter(eng, convert.PandocOptions{
		Args:          cfg.Engine.Args,
		Timeout:       cfg.Engine.Timeout,
		MaxDiagnostic: cfg.Engine.MaxDiagnostic,
	})
	orch := convert.New(converter, convert.Options{
		Resolve: resolve.Options{
			SourceExt: cfg.Batch.SourceExt,
			TargetExt: cfg.Batch.TargetExt,
			Recursive: cfg.Batch.Recursive,
			OutputDir: cfg.Batch.OutputDir,
		},
		Policy:   policy,
		Prompter: prompter,
		Workers:  cfg.Batch.Workers,
		Logger:   logger,
	})

	run, runErr := orch.Run(ctx, root)
	if run.ID == "" {
		return runErr
	}

	out := cmd.OutOrStdout()
	style := report.Style{Color: out == io.Writer(os.Stdout) && term.IsTerminal(int(os.Stdout.Fd()))}
	if err := report.Render(out, run.Summary, run.Results, style); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if cfg.Report.File != "" {
		if err := report.WriteYAML(cfg.Report.File, run); err != nil {
			logger.Warn("report file not written", "path", cfg.Report.File, "error", err)
		} else {
			logger.Info("report written", "path", cfg.Report.File)
		}
	}

	if cfg.History.Enabled {
		if err := recordRun(context.WithoutCancel(ctx), cfg.History.Path, run); err != nil {
			logger.Warn("run not recorded in history", "error", err)
		}
	}

	return runErr
}

// recordRun appends run to the history database at path, or the default
// location when path is empty.
func recordRun(ctx context.Context, path string, run types.Run) error {
	store, err := openHistory(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, run)
}

func openHistory(path string) (*history.Store, error) {
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}

// buildLogger returns a slog logger writing to w at the named level and
// format.
func buildLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
