// Package main is the specforge CLI entry point: cobra root command,
// zap structured logging at the boundary, and the file-based category
// logger initialization, mirroring the teacher's cmd/nerd/main.go
// PersistentPreRunE/PersistentPostRun pattern.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/specforge/specforge/internal/config"
	"github.com/specforge/specforge/internal/logging"
	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/workspace"
)

var (
	verbose    bool
	homeDir    string
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "specforge",
	Short: "specforge — deterministic, receipt-producing LLM specification pipeline",
	Long: `specforge drives an LLM backend through six software-specification
phases (Requirements, Design, Tasks, Review, Fixup, Final), producing
canonical artifacts and signed receipts at every step so CI can gate on
a deterministic pass/fail verdict.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		home := homeDir
		if home == "" {
			home, err = workspace.DefaultHome()
			if err != nil {
				return fmt.Errorf("failed to resolve home directory: %w", err)
			}
		}

		path := configPath
		if path == "" {
			path = filepath.Join(home, "config.yaml")
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Initialize(home, cfg.Logging.Level, false); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "specforge home directory (default ~/.specforge)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default <home>/config.yaml)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(fixupCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if code := specerr.AsExitCode(err); code != 0 {
		return code
	}
	return 1
}

func resolveHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	return workspace.DefaultHome()
}
