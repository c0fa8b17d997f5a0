package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/lock"
	"github.com/specforge/specforge/internal/workspace"
)

var cleanForce bool

var cleanCmd = &cobra.Command{
	Use:   "clean <spec-id>",
	Short: "destroy a spec workspace (artifacts, receipts, source, lock)",
	Long: `clean removes the entire on-disk workspace for a spec. A spec is
destroyed only by this explicit command; phase execution never deletes
prior state. clean is a mutating operation and takes the spec's
advisory lock first, so it cannot race a running phase.`,
	Args: cobra.ExactArgs(1),
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
		if !paths.Exists() {
			cmd.Printf("spec workspace does not exist: %s\n", paths.Root)
			return nil
		}

		guard, err := lock.Acquire(paths.LockGuard, cfg.LockTTL(), cleanForce)
		if err != nil {
			return err
		}
		// Removing the root also removes the lock file; Release tolerates
		// the already-gone path.
		defer guard.Release()

		if err := os.RemoveAll(paths.Root); err != nil {
			return err
		}
		cmd.Printf("removed spec workspace: %s\n", paths.Root)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "override a stale lock even if held by a dead or TTL-expired owner")
}
