package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/fixup"
	"github.com/specforge/specforge/internal/lock"
	"github.com/specforge/specforge/internal/spec"
	"github.com/specforge/specforge/internal/workspace"
)

var (
	fixupAllowLinks bool
	fixupForce      bool
)

var fixupCmd = &cobra.Command{
	Use:   "fixup",
	Short: "preview or apply the diff blocks extracted from Review output",
}

var fixupPreviewCmd = &cobra.Command{
	Use:   "preview <spec-id>",
	Short: "show what fixup apply would change, without touching files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFixup(cmd, args[0], false)
	},
}

var fixupApplyCmd = &cobra.Command{
	Use:   "apply <spec-id>",
	Short: "apply the fixup plan's diff blocks to the working tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFixup(cmd, args[0], true)
	},
}

func runFixup(cmd *cobra.Command, rawSpecID string, apply bool) error {
	home, err := resolveHome()
	if err != nil {
		return err
	}
	specID, err := workspace.SanitizeID(rawSpecID)
	if err != nil {
		return err
	}
	paths := workspace.Resolve(home, specID)

	// Preview is read-only and skips the lock; apply mutates and must
	// hold it, same as phase execution and clean.
	if apply {
		guard, err := lock.Acquire(paths.LockGuard, cfg.LockTTL(), fixupForce)
		if err != nil {
			return err
		}
		defer guard.Release()
	}

	artifacts := artifact.New(paths.Artifacts)
	names, err := artifacts.ListForPhase(spec.Review)
	if err != nil {
		return err
	}
	wantName := spec.Review.FilePrefix() + "-review" + spec.Markdown.Extension()
	var reviewMarkdown []byte
	for _, n := range names {
		if n == wantName {
			a, err := artifacts.Read(n)
			if err != nil {
				return err
			}
			reviewMarkdown = a.Content
		}
	}
	if reviewMarkdown == nil {
		cmd.Println("no Review artifact found; nothing to fix up")
		return nil
	}

	blocks, err := fixup.Parse(string(reviewMarkdown))
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		cmd.Println("no FIXUP PLAN found in Review output; nothing to fix up")
		return nil
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	var summaries []fixup.ChangeSummary
	if apply {
		summaries, err = fixup.Apply(repoRoot, blocks, fixupAllowLinks)
	} else {
		summaries, err = fixup.Preview(repoRoot, blocks, fixupAllowLinks)
	}
	if err != nil {
		return err
	}

	for _, s := range summaries {
		cmd.Printf("%s: %d/%d hunks applied=%v\n", s.TargetFile, s.HunksOK, s.HunksTotal, s.Applied)
	}
	return nil
}

func init() {
	fixupPreviewCmd.Flags().BoolVar(&fixupAllowLinks, "allow-links", false, "permit symlink/hardlink targets that still resolve inside the repo root")
	fixupApplyCmd.Flags().BoolVar(&fixupAllowLinks, "allow-links", false, "permit symlink/hardlink targets that still resolve inside the repo root")
	fixupApplyCmd.Flags().BoolVar(&fixupForce, "force", false, "override a stale lock even if held by a dead or TTL-expired owner")
	fixupCmd.AddCommand(fixupPreviewCmd)
	fixupCmd.AddCommand(fixupApplyCmd)
}
