package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/durstr"
	"github.com/specforge/specforge/internal/gate"
	"github.com/specforge/specforge/internal/receipt"
	"github.com/specforge/specforge/internal/spec"
	"github.com/specforge/specforge/internal/workspace"
)

var errGateFailed = errors.New("gate policy violated")

var (
	gateJSON            bool
	gatePolicyPath      string
	gateMinPhase        string
	gateFailOnFixups    bool
	gateMaxPhaseAge     string
)

// artifactTreeAdapter satisfies gate.ArtifactTree over a real
// artifact.Manager, the one piece of glue between the pure evaluator
// and the filesystem-backed managers the CLI wires up.
type artifactTreeAdapter struct {
	manager *artifact.Manager
}

func (a artifactTreeAdapter) HasArtifact(phase spec.PhaseID) bool {
	ok, _ := a.manager.Exists(phase)
	return ok
}

func (a artifactTreeAdapter) ReviewMarkdown() ([]byte, bool) {
	names, err := a.manager.ListForPhase(spec.Review)
	if err != nil {
		return nil, false
	}
	wantName := spec.Review.FilePrefix() + "-review" + spec.Markdown.Extension()
	for _, n := range names {
		if n == wantName {
			art, err := a.manager.Read(n)
			if err != nil {
				return nil, false
			}
			return art.Content, true
		}
	}
	return nil, false
}

var gateCmd = &cobra.Command{
	Use:   "gate <spec-id>",
	Short: "evaluate CI gate policy against receipts and artifacts",
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

		policyPath, err := gate.ResolvePolicyPath(gatePolicyPath, paths.Root+"/policy.toml")
		if err != nil {
			return err
		}
		policy, err := gate.ParsePolicyFile(policyPath)
		if err != nil {
			return err
		}

		// CLI overrides win over the policy file (spec.md §3 "Merged from
		// defaults ← policy-file ← CLI overrides with CLI winning").
		if cmd.Flags().Changed("min-phase") {
			phase, ok := spec.ParsePhaseID(gateMinPhase)
			if !ok {
				return fmt.Errorf("unknown phase %q", gateMinPhase)
			}
			policy.MinPhase = phase
		}
		if cmd.Flags().Changed("fail-on-pending-fixups") {
			policy.FailOnPendingFixups = gateFailOnFixups
		}
		if cmd.Flags().Changed("max-phase-age") {
			d, err := durstr.Parse(gateMaxPhaseAge)
			if err != nil {
				return err
			}
			policy.MaxPhaseAge = &d
		}

		receipts, err := receipt.New(paths.Receipts).List()
		if err != nil {
			return err
		}
		tree := artifactTreeAdapter{manager: artifact.New(paths.Artifacts)}

		result := gate.Evaluate(receipts, tree, policy, specID, time.Now().UTC())

		if gateJSON {
			data, err := canon.MarshalJCS(result)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
		} else {
			cmd.Printf("gate: passed=%v — %s\n", result.Passed, result.Summary)
			for _, reason := range result.FailureReasons {
				cmd.Printf("  - %s\n", reason)
			}
		}

		if !result.Passed {
			cmd.SilenceUsage = true
			return errGateFailed
		}
		return nil
	},
}

func init() {
	gateCmd.Flags().BoolVar(&gateJSON, "json", false, "emit the gate-json.v1 document")
	gateCmd.Flags().StringVar(&gatePolicyPath, "policy", "", "path to a [gate]-sectioned policy file")
	gateCmd.Flags().StringVar(&gateMinPhase, "min-phase", "", "require this phase to have completed (overrides the policy file)")
	gateCmd.Flags().BoolVar(&gateFailOnFixups, "fail-on-pending-fixups", false, "fail when the Review artifact carries an unresolved fixup plan (overrides the policy file)")
	gateCmd.Flags().StringVar(&gateMaxPhaseAge, "max-phase-age", "", "maximum age of the required phase's latest successful receipt, e.g. 7d (overrides the policy file)")
}
