package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/lockfile"
	"github.com/specforge/specforge/internal/workspace"
)

var createLock bool

var initCmd = &cobra.Command{
	Use:   "init <spec-id>",
	Short: "create the on-disk skeleton for a new spec workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := resolveHome()
		if err != nil {
			return err
		}
		specID, err := workspace.SanitizeID(args[0])
		if err != nil {
			return err
		}
		paths := workspace.Resolve(home, specID)
		if err := paths.EnsureDirs(); err != nil {
			return err
		}

		problemPath := filepath.Join(paths.Source, "00-problem-statement.md")
		if _, err := os.Stat(problemPath); os.IsNotExist(err) {
			if err := os.WriteFile(problemPath, []byte("# Problem Statement\n\n(describe the problem to specify here)\n"), 0o644); err != nil {
				return err
			}
		}

		if createLock {
			lf := lockfile.Lockfile{
				ModelFullName:    cfg.Model.FullName,
				ClaudeCLIVersion: cfg.Model.CLIVersion,
				SchemaVersion:    "receipt-v1",
			}
			if err := lockfile.Save(paths.LockFile, lf); err != nil {
				return err
			}
		}

		cmd.Printf("initialized spec workspace: %s\n", paths.Root)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&createLock, "create-lock", false, "pin the current model/CLI version in lock.json")
}
