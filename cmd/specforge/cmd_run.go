package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/lockfile"
	"github.com/specforge/specforge/internal/model"
	"github.com/specforge/specforge/internal/orchestrator"
	"github.com/specforge/specforge/internal/redact"
	"github.com/specforge/specforge/internal/runner"
	"github.com/specforge/specforge/internal/spec"
	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/workspace"
)

var (
	runDryRun      bool
	runDebugPacket bool
	runForce       bool
	runStrict      bool
	runStrictLock  bool
)

var runCmd = &cobra.Command{
	Use:   "run <spec-id> <phase>",
	Short: "execute one pipeline phase against the configured backend",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := resolveHome()
		if err != nil {
			return err
		}
		specID, err := workspace.SanitizeID(args[0])
		if err != nil {
			return err
		}
		phaseID, ok := spec.ParsePhaseID(args[1])
		if !ok {
			return specerr.New(specerr.KindConfiguration, "unknown phase: "+args[1])
		}

		paths := workspace.Resolve(home, specID)
		if err := paths.EnsureDirs(); err != nil {
			return err
		}
		if runDebugPacket {
			if err := paths.EnsureContextDir(); err != nil {
				return err
			}
		}

		// Lockfile drift warns always; it fails the run only under
		// --strict-lock.
		if lf, lfErr := lockfile.Load(paths.LockFile); lfErr == nil && lf != nil {
			drift := lockfile.Detect(lf, lockfile.Current{
				ModelFullName:    cfg.Model.FullName,
				ClaudeCLIVersion: cfg.Model.CLIVersion,
				SchemaVersion:    "receipt-v1",
			})
			if drift != nil {
				for _, f := range drift.Fields {
					cmd.PrintErrf("warning: lockfile drift on %s: locked=%q current=%q\n", f.Field, f.Locked, f.Current)
				}
				if runStrictLock {
					return specerr.New(specerr.KindConfiguration, "lockfile drift detected and --strict-lock is set").
						WithSuggestion("update lock.json with `specforge init --create-lock`, or rerun without --strict-lock")
				}
			}
		}

		redactor, err := redact.New(nil, nil)
		if err != nil {
			return err
		}
		orch := orchestrator.New(paths, redactor)

		problemStatement, _ := os.ReadFile(paths.Source + "/00-problem-statement.md")

		runnerInv := runner.Invocation{
			Mode:    cfg.RunnerMode(),
			Binary:  "claude",
			Distro:  cfg.Runner.Distro,
			Timeout: cfg.RunnerTimeout(),
		}
		backend, err := cfg.SelectLLMBackend(runnerInv)
		if err != nil {
			return err
		}

		opt := orchestrator.Options{
			DryRun:      runDryRun,
			DebugPacket: runDebugPacket,
			Force:       runForce,
			LockTTL:     cfg.LockTTL(),
			Strict:      runStrict,
			Model: model.Identity{
				FullName:   cfg.Model.FullName,
				Alias:      cfg.Model.Alias,
				CLIVersion: cfg.Model.CLIVersion,
			},
			RunnerInv: runnerInv,
			Backend:   backend,
			PacketBudget: spec.PacketBudget{
				LimitBytes: cfg.Packet.LimitBytes,
				LimitLines: cfg.Packet.LimitLines,
			},
		}

		outcome, err := orch.RunPhase(context.Background(), specID, phaseID, problemStatement, opt)
		if err != nil {
			return err
		}

		cmd.Printf("phase %s complete: exit_code=%d artifacts=%d\n", phaseID, outcome.Receipt.ExitCode, len(outcome.Artifacts))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "build the packet and stop before invoking the backend")
	runCmd.Flags().BoolVar(&runDebugPacket, "debug-packet", false, "persist the assembled packet under context/ for inspection")
	runCmd.Flags().BoolVar(&runForce, "force", false, "bypass dependency gating and stale-lock checks")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "promote postprocess validation warnings to a hard failure")
	runCmd.Flags().BoolVar(&runStrictLock, "strict-lock", false, "fail the run when lock.json drifts from the current model/CLI version")
}
