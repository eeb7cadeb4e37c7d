// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives batch conversion: it resolves the documents under a
// target, settles output name conflicts, hands each document to a
// Converter, and collects one result per document.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/SYKhayyat/docx2org/internal/conflict"
	"github.com/SYKhayyat/docx2org/internal/report"
	"github.com/SYKhayyat/docx2org/internal/resolve"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

// Converter transforms one input document into the file at outputPath.
// Different engines implement this interface; failures are reported in the
// Outcome rather than as an error so a batch can continue past them.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) types.Outcome
}

// Options configures an Orchestrator.
type Options struct {
	// Resolve controls discovery and output naming.
	Resolve resolve.Options

	// Policy decides what happens to existing output files.
	Policy types.ConflictPolicy

	// Prompter answers conflicts under the interactive policy.
	Prompter conflict.Prompter

	// Workers is the number of conversions run at once. Values below 1
	// mean 1. Conflict decisions are always made one at a time.
	Workers int

	// Logger receives one record per document. Nil uses slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs batches through a Converter.
type Orchestrator struct {
	conv    Converter
	opts    Options
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// New returns an Orchestrator that converts with c.
func New(c Converter, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		conv:    c,
		opts:    opts,
		logger:  logger,
		workers: workers,
		now:     time.Now,
	}
}

// Run converts every document under root. A failed conversion is recorded
// and the batch continues. Errors from path resolution are returned before
// any conversion with an empty Run.
//
// If ctx is cancelled or the conflict prompter fails, no further documents
// are started; conversions already running finish or are killed, and the
// partial Run is returned together with the error.
func (o *Orchestrator) Run(ctx context.Context, root string) (types.Run, error) {
	targets, err := resolve.Resolve(root, o.opts.Resolve)
	if err != nil {
		return types.Run{}, err
	}

	resolver, err := conflict.NewResolver(o.opts.Policy, o.opts.Prompter)
	if err != nil {
		return types.Run{}, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	run := types.Run{
		ID:        uuid.NewString(),
		Root:      absRoot,
		Policy:    o.opts.Policy,
		StartedAt: o.now().UTC(),
	}
	if len(targets) == 0 {
		o.logger.Info("no matching documents found", "root", absRoot, "ext", o.opts.Resolve.SourceExt)
	}
	o.logger.Debug("batch started", "run", run.ID, "root", absRoot, "documents", len(targets), "workers", o.workers)

	results := make([]types.ConversionResult, len(targets))
	recorded := make([]bool, len(targets))

	var g errgroup.Group
	g.SetLimit(o.workers)

	var runErr error
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		decision, err := resolver.Decide(ctx, target.OutputPath)
		if err != nil {
			runErr = err
			break
		}

		if decision.Skipped() {
			results[i] = types.ConversionResult{
				InputPath: target.InputPath,
				Status:    types.ConversionSkipped,
			}
			recorded[i] = true
			o.logger.Info("skipped", "input", target.InputPath, "reason", "output exists")
			continue
		}

		if o.workers == 1 {
			results[i] = o.convertOne(ctx, target, decision.OutputPath)
			recorded[i] = true
			continue
		}
		g.Go(func() error {
			results[i] = o.convertOne(ctx, target, decision.OutputPath)
			recorded[i] = true
			return nil
		})
	}
	g.Wait()

	for i := range results {
		if recorded[i] {
			run.Results = append(run.Results, results[i])
		}
	}
	run.Summary = report.Summarize(run.Results)
	run.FinishedAt = o.now().UTC()

	if runErr != nil {
		return run, fmt.Errorf("batch stopped after %d of %d document(s): %w",
			len(run.Results), len(targets), runErr)
	}
	return run, nil
}

// convertOne invokes the converter for one target and logs the outcome.
func (o *Orchestrator) convertOne(ctx context.Context, target types.ConversionTarget, output string) types.ConversionResult {
	o.logger.Debug("converting", "input", target.InputPath, "output", output, "format", target.Format)

	start := o.now()
	outcome := o.conv.Convert(ctx, target.InputPath, output)
	result := types.ConversionResult{
		InputPath:  target.InputPath,
		OutputPath: output,
		Duration:   o.now().Sub(start),
	}

	if outcome.OK {
		result.Status = types.ConversionConverted
		o.logger.Info("converted", "input", target.InputPath, "output", output, "duration", result.Duration)
		return result
	}

	result.Status = types.ConversionFailed
	result.Diagnostic = outcome.Diagnostic
	if result.Diagnostic == "" {
		result.Diagnostic = "conversion failed without diagnostic output"
	}
	o.logger.Warn("failed", "input", target.InputPath, "diagnostic", result.Diagnostic)
	return result
}
