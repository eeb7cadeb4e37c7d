// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SYKhayyat/docx2org/internal/engine"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

// DefaultMaxDiagnostic caps the stderr text kept from a failed conversion.
const DefaultMaxDiagnostic = 1024

// PandocOptions configures a PandocConverter.
type PandocOptions struct {
	// Args are extra engine arguments placed before the standard ones.
	Args []string

	// Timeout bounds each conversion. Zero means no limit.
	Timeout time.Duration

	// MaxDiagnostic caps the kept stderr text in bytes. Zero selects
	// DefaultMaxDiagnostic.
	MaxDiagnostic int
}

// PandocConverter converts documents by running pandoc (or a compatible
// engine) as "<engine> [args] -s <input> -o <output>". The output format is
// inferred by the engine from the output extension.
type PandocConverter struct {
	engine engine.Engine
	opts   PandocOptions
}

// NewPandocConverter creates a converter that runs documents through eng.
func NewPandocConverter(eng engine.Engine, opts PandocOptions) *PandocConverter {
	if opts.MaxDiagnostic <= 0 {
		opts.MaxDiagnostic = DefaultMaxDiagnostic
	}
	return &PandocConverter{engine: eng, opts: opts}
}

// Convert runs the engine on one input/output pair. A nonzero exit, crash,
// timeout, or cancellation yields a Failure carrying the engine's standard
// error. The output file itself is not inspected.
func (p *PandocConverter) Convert(ctx context.Context, inputPath, outputPath string) types.Outcome {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return types.Failure(fmt.Sprintf("creating output directory: %v", err))
	}

	runCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(p.opts.Args)+4)
	args = append(args, p.opts.Args...)
	args = append(args, "-s", inputPath, "-o", outputPath)

	var stderr bytes.Buffer
	err := p.engine.Run(runCtx, args, &stderr)
	if err == nil {
		return types.Success()
	}

	diag := strings.TrimSpace(stderr.String())
	switch {
	case ctx.Err() != nil:
		diag = joinDiagnostic("interrupted", diag)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		diag = joinDiagnostic(fmt.Sprintf("timed out after %s", p.opts.Timeout), diag)
	case diag == "":
		diag = err.Error()
	}
	return types.Failure(Truncate(diag, p.opts.MaxDiagnostic))
}

func joinDiagnostic(reason, stderr string) string {
	if stderr == "" {
		return reason
	}
	return reason + ": " + stderr
}

// Truncate shortens s to at most max bytes without splitting a UTF-8
// sequence, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	const marker = "…"
	cut := max - len(marker)
	if cut <= 0 {
		return marker
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + marker
}
