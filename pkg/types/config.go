package types

import (
	"fmt"
	"strings"
	"time"
)

// ConflictPolicy selects how an existing output file is handled.
type ConflictPolicy string

const (
	PolicyInteractive ConflictPolicy = "interactive"
	PolicyOverwrite   ConflictPolicy = "overwrite"
	PolicySkip        ConflictPolicy = "skip"
	PolicyRename      ConflictPolicy = "rename"
)

// ParseConflictPolicy converts a configuration string into a ConflictPolicy.
// Matching is case-insensitive; the empty string selects interactive.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyInteractive, nil
	case PolicyInteractive, PolicyOverwrite, PolicySkip, PolicyRename:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want interactive, overwrite, skip, or rename)", s)
	}
}

// EngineConfig holds settings for the external conversion engine.
type EngineConfig struct {
	// Path is the engine binary name or path (default "pandoc").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Args are extra arguments placed before the input/output arguments.
	Args []string `json:"args" yaml:"args" mapstructure:"args"`

	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxDiagnostic caps the stderr text kept for a failed conversion (default 1024).
	MaxDiagnostic int `json:"max_diagnostic" yaml:"max_diagnostic" mapstructure:"max_diagnostic"`
}

// BatchConfig holds settings for discovery and conflict handling.
type BatchConfig struct {
	// SourceExt is the recognized input extension (default ".docx").
	SourceExt string `json:"source_ext" yaml:"source_ext" mapstructure:"source_ext"`

	// TargetExt is the output extension (default ".org").
	TargetExt string `json:"target_ext" yaml:"target_ext" mapstructure:"target_ext"`

	// OnConflict is the conflict policy name.
	OnConflict string `json:"on_conflict" yaml:"on_conflict" mapstructure:"on_conflict"`

	// Workers is the number of conversions run at once (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Recursive controls whether subdirectories are scanned (default true).
	Recursive bool `json:"recursive" yaml:"recursive" mapstructure:"recursive"`

	// OutputDir, when set, receives outputs mirroring the input tree.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// ReportConfig holds settings for the batch report.
type ReportConfig struct {
	// File, when set, receives a YAML copy of the run report.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds settings for diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for one invocation.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine" mapstructure:"engine"`
	Batch   BatchConfig   `json:"batch" yaml:"batch" mapstructure:"batch"`
	Report  ReportConfig  `json:"report" yaml:"report" mapstructure:"report"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// Validate checks the settings that would otherwise fail mid-batch.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Engine.Path) == "" {
		return fmt.Errorf("engine.path must not be empty")
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must not be negative, got %s", c.Engine.Timeout)
	}
	if _, err := ParseConflictPolicy(c.Batch.OnConflict); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	src, dst := NormalizeExt(c.Batch.SourceExt), NormalizeExt(c.Batch.TargetExt)
	if src == "" || dst == "" {
		return fmt.Errorf("batch.source_ext and batch.target_ext must not be empty")
	}
	if src == dst {
		return fmt.Errorf("batch.source_ext and batch.target_ext must differ, both are %q", src)
	}
	return nil
}

// NormalizeExt lower-cases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
