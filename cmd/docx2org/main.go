// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docx2org CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SYKhayyat/docx2org/internal/engine"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts the documents under one path.
var rootCmd = &cobra.Command{
	Use:   "docx2org <path>",
	Short: "Batch convert Word documents to Org files with pandoc",
	Long: `docx2org converts a single .docx file, or every .docx file under a
directory tree, into Org files using pandoc. Each output is written next to its
source with the .org extension unless --output-dir is given.

When an output file already exists, docx2org asks what to do (overwrite, skip,
or rename to name-1.org) unless a non-interactive policy is chosen with
--on-conflict. A document that fails to convert never stops the batch; the
summary at the end lists every failure with pandoc's error text.`,
	Example: `  docx2org thesis.docx
  docx2org ~/Documents/notes --on-conflict rename
  docx2org chapters/ --workers 4 --output-dir org/ --report-file report.yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("requires exactly one <path> argument (a file or directory), received %d", len(args))
		}
		return nil
	},
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docx2org.yaml or ~/.config/docx2org/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("history-db", "", "run history database (default: <user cache dir>/docx2org/history.db)")

	f := rootCmd.Flags()
	f.String("on-conflict", string(types.PolicyInteractive), "existing output policy: interactive, overwrite, skip, or rename")
	f.Bool("overwrite-all", false, "overwrite every existing output (same as --on-conflict overwrite)")
	f.Bool("skip-all", false, "skip documents whose output exists (same as --on-conflict skip)")
	f.IntP("workers", "w", 1, "number of documents converted at once")
	f.BoolP("recursive", "r", true, "descend into subdirectories")
	f.StringP("output-dir", "d", "", "write outputs under this directory, mirroring the input tree")
	f.String("engine", engine.DefaultBinary, "conversion engine binary")
	f.StringSlice("engine-arg", nil, "extra argument passed to the engine (repeatable)")
	f.Duration("timeout", 0, "per-document conversion time limit (0 = none)")
	f.String("report-file", "", "also write the run report as YAML to this file")
	f.Bool("no-history", false, "do not record this run in the history database")
	rootCmd.MarkFlagsMutuallyExclusive("on-conflict", "overwrite-all", "skip-all")

	bindFlags(map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"history.path":      "history-db",
		"batch.on_conflict": "on-conflict",
		"batch.workers":     "workers",
		"batch.recursive":   "recursive",
		"batch.output_dir":  "output-dir",
		"engine.path":       "engine",
		"engine.args":       "engine-arg",
		"engine.timeout":    "timeout",
		"report.file":       "report-file",
	})

	viper.SetDefault("engine.path", engine.DefaultBinary)
	viper.SetDefault("engine.max_diagnostic", 1024)
	viper.SetDefault("batch.source_ext", ".docx")
	viper.SetDefault("batch.target_ext", ".org")
	viper.SetDefault("batch.on_conflict", string(types.PolicyInteractive))
	viper.SetDefault("batch.workers", 1)
	viper.SetDefault("batch.recursive", true)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// bindFlags binds config keys to root command flags, local or persistent.
func bindFlags(keys map[string]string) {
	for key, name := range keys {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			flag = rootCmd.PersistentFlags().Lookup(name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docx2org")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docx2org"))
		}
	}

	viper.SetEnvPrefix("DOCX2ORG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, environment, and file settings.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	if on, _ := cmd.Flags().GetBool("overwrite-all"); on {
		cfg.Batch.OnConflict = string(types.PolicyOverwrite)
	}
	if on, _ := cmd.Flags().GetBool("skip-all"); on {
		cfg.Batch.OnConflict = string(types.PolicySkip)
	}
	if off, _ := cmd.Flags().GetBool("no-history"); off {
		cfg.History.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
