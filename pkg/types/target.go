// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the docx2org batch
// converter: conversion targets, conflict decisions, per-file results,
// batch summaries, and configuration.
package types

// ConversionTarget identifies one unit of work: a source document and the
// output path proposed for it. Targets are created by the path resolver and
// are not modified afterwards.
type ConversionTarget struct {
	// InputPath is the absolute path of the source document.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is the proposed destination, before conflict resolution.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Format is the source format tag (a MIME type such as
	// "application/vnd.openxmlformats-officedocument.wordprocessingml.document").
	Format string `json:"format" yaml:"format"`
}

// DecisionAction is the verdict of conflict resolution for one target.
type DecisionAction string

const (
	ActionProceed DecisionAction = "proceed"
	ActionSkip    DecisionAction = "skip"
)

// ConflictDecision is either Proceed with a final output path or Skip.
type ConflictDecision struct {
	Action     DecisionAction
	OutputPath string
}

// Proceed returns a decision to convert into path.
func Proceed(path string) ConflictDecision {
	return ConflictDecision{Action: ActionProceed, OutputPath: path}
}

// Skip returns a decision to leave the target unconverted.
func Skip() ConflictDecision {
	return ConflictDecision{Action: ActionSkip}
}

// Skipped reports whether the decision is Skip.
func (d ConflictDecision) Skipped() bool {
	return d.Action == ActionSkip
}
