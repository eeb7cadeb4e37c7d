// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a user-supplied file or directory into the ordered
// list of documents to convert.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

// lockPrefix marks the owner files word processors leave next to open documents.
const lockPrefix = "~$"

// NotFoundError is returned when the target path does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// Options controls discovery and output naming.
type Options struct {
	// SourceExt is the recognized input extension, matched case-insensitively.
	SourceExt string
	// TargetExt replaces SourceExt in proposed output names.
	TargetExt string
	// Recursive descends into subdirectories when the target is a directory.
	Recursive bool
	// OutputDir, when set, roots proposed outputs there, mirroring the
	// input tree below the target directory.
	OutputDir string
}

// Check returns a NotFoundError if root does not exist.
func Check(root string) error {
	_, err := stat(root)
	return err
}

func stat(root string) (fs.FileInfo, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: root, Err: err}
		}
		return nil, fmt.Errorf("inspecting %s: %w", root, err)
	}
	return info, nil
}

// Resolve returns one ConversionTarget per matching document under root, in
// lexical path order. A single file yields at most one target. A directory
// without matching files yields an empty slice.
func Resolve(root string, opts Options) ([]types.ConversionTarget, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := stat(abs)
	if err != nil {
		return nil, err
	}

	opts.SourceExt = types.NormalizeExt(opts.SourceExt)
	opts.TargetExt = types.NormalizeExt(opts.TargetExt)
	if opts.OutputDir != "" {
		if opts.OutputDir, err = filepath.Abs(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("resolving output directory: %w", err)
		}
	}

	if !info.IsDir() {
		if !matches(filepath.Base(abs), opts.SourceExt) {
			return []types.ConversionTarget{}, nil
		}
		return []types.ConversionTarget{newTarget(filepath.Dir(abs), abs, opts)}, nil
	}

	targets := []types.ConversionTarget{}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !matches(d.Name(), opts.SourceExt) {
			return nil
		}
		targets = append(targets, newTarget(abs, path, opts))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", abs, err)
	}
	return targets, nil
}

func matches(name, ext string) bool {
	if strings.HasPrefix(name, lockPrefix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}

func newTarget(base, input string, opts Options) types.ConversionTarget {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + opts.TargetExt
	dir := filepath.Dir(input)
	if opts.OutputDir != "" {
		rel, err := filepath.Rel(base, dir)
		if err != nil {
			rel = "."
		}
		dir = filepath.Join(opts.OutputDir, rel)
	}
	return types.ConversionTarget{
		InputPath:  input,
		OutputPath: filepath.Join(dir, name),
		Format:     detectFormat(input),
	}
}

// detectFormat sniffs the document's MIME type, falling back to the
// extension when the content is not recognized.
func detectFormat(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err == nil && mtype.String() != "application/octet-stream" {
		return mtype.String()
	}
	return formatFromExt(filepath.Ext(path))
}

func formatFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".odt":
		return "application/vnd.oasis.opendocument.text"
	case ".doc":
		return "application/msword"
	case ".rtf":
		return "text/rtf"
	case ".md":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	}
	return "application/octet-stream"
}
