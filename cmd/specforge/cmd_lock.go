package main

import (
	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/lock"
	"github.com/specforge/specforge/internal/workspace"
)

var lockForce bool

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "inspect or release a spec's advisory lock",
}

var lockReleaseCmd = &cobra.Command{
	Use:   "release <spec-id>",
	Short: "release (or force-clear) a spec's advisory lock",
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

		guard, err := lock.Acquire(paths.LockGuard, cfg.LockTTL(), lockForce)
		if err != nil {
			return err
		}
		if err := guard.Release(); err != nil {
			return err
		}
		cmd.Println("lock released")
		return nil
	},
}

func init() {
	lockReleaseCmd.Flags().BoolVar(&lockForce, "force", false, "override a stale lock even if held by a dead or TTL-expired owner")
	lockCmd.AddCommand(lockReleaseCmd)
}
