// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine locates and runs the external document conversion engine
// (pandoc by default) as a subprocess.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the engine used when none is configured.
const DefaultBinary = "pandoc"

// Engine runs the conversion binary.
type Engine interface {
	// Name returns the binary name (e.g. "pandoc").
	Name() string

	// Version returns the first line of the binary's --version output.
	Version() string

	// Run executes the binary with args, copying its standard error to
	// stderr. It returns a non-nil error on a nonzero exit, a crash, or
	// cancellation of ctx.
	Run(ctx context.Context, args []string, stderr io.Writer) error
}

// MissingError is returned when the engine binary cannot be found or does
// not respond to a version query.
type MissingError struct {
	Binary string
	Err    error
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("conversion engine %s is not installed or not in PATH: %v", e.Binary, e.Err)
}

func (e *MissingError) Unwrap() error { return e.Err }

// IsMissing reports whether err is a MissingError.
func IsMissing(err error) bool {
	var target *MissingError
	return errors.As(err, &target)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args []string, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	return cmd.Run()
}

// binary implements Engine for a resolved executable path.
type binary struct {
	path    string
	version string
	exec    executor
}

func (b *binary) Name() string { return filepath.Base(b.path) }

func (b *binary) Version() string { return b.version }

func (b *binary) Run(ctx context.Context, args []string, stderr io.Writer) error {
	if err := b.exec.Run(ctx, b.path, args, stderr); err != nil {
		return fmt.Errorf("running %s: %w", b.Name(), err)
	}
	return nil
}

var defaultExec = &osExecutor{}

// Detect resolves bin on PATH and verifies it answers --version. An empty
// bin selects DefaultBinary.
func Detect(ctx context.Context, bin string) (Engine, error) {
	return detect(ctx, defaultExec, bin)
}

func detect(ctx context.Context, exec executor, bin string) (Engine, error) {
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, &MissingError{Binary: bin, Err: err}
	}
	out, err := exec.Output(ctx, path, "--version")
	if err != nil {
		return nil, &MissingError{Binary: bin, Err: fmt.Errorf("%s --version: %w", bin, err)}
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return &binary{path: path, version: strings.TrimSpace(version), exec: exec}, nil
}
