// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus is the terminal state of one conversion target.
type ConversionStatus string

const (
	ConversionConverted ConversionStatus = "converted"
	ConversionSkipped   ConversionStatus = "skipped"
	ConversionFailed    ConversionStatus = "failed"
)

// Outcome is what a converter reports for one input/output pair.
type Outcome struct {
	OK         bool
	Diagnostic string
}

// Success returns a successful Outcome.
func Success() Outcome {
	return Outcome{OK: true}
}

// Failure returns a failed Outcome carrying diag.
func Failure(diag string) Outcome {
	return Outcome{Diagnostic: diag}
}

// ConversionResult records what happened to one ConversionTarget.
type ConversionResult struct {
	// InputPath is the source document.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is the final destination. Empty when the target was skipped.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Status is converted, skipped, or failed.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Diagnostic holds the engine's error text for failed conversions.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`

	// Duration is the wall time spent in the engine.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// BatchSummary holds aggregate counts for one batch run.
type BatchSummary struct {
	Total     int `json:"total" yaml:"total"`
	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
}

// HasFailures reports whether any file failed conversion.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run describes one batch invocation: what was converted, under which
// policy, and how it went. It is the unit stored by the run history and
// written by the report exporter.
type Run struct {
	ID         string             `json:"id" yaml:"id"`
	Root       string             `json:"root" yaml:"root"`
	Policy     ConflictPolicy     `json:"policy" yaml:"policy"`
	StartedAt  time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time          `json:"finished_at" yaml:"finished_at"`
	Summary    BatchSummary       `json:"summary" yaml:"summary"`
	Results    []ConversionResult `json:"results,omitempty" yaml:"results,omitempty"`
}
