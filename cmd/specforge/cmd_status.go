package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/lockfile"
	"github.com/specforge/specforge/internal/receipt"
	"github.com/specforge/specforge/internal/status"
	"github.com/specforge/specforge/internal/workspace"
)

var (
	statusJSON  bool
	statusWatch bool
)

var statusCmd = &cobra.Command{
	Use:   "status <spec-id>",
	Short: "print the current phase/artifact/receipt status for a spec",
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

		printOnce := func() error {
			receipts := receipt.New(paths.Receipts)
			artifacts := artifact.New(paths.Artifacts)

			var drift *lockfile.Drift
			if lf, err := lockfile.Load(paths.LockFile); err == nil && lf != nil {
				drift = lockfile.Detect(lf, lockfile.Current{
					ModelFullName:    cfg.Model.FullName,
					ClaudeCLIVersion: cfg.Model.CLIVersion,
					SchemaVersion:    "receipt-v1",
				})
			}

			doc, err := status.Build(specID, receipts, artifacts, cfg.Validation.Strict, cfg.EffectiveConfig(), drift)
			if err != nil {
				return err
			}

			if statusJSON {
				data, err := canon.MarshalJCS(doc)
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Printf("spec %s: has_errors=%v pending_fixups=%s\n", doc.SpecID, doc.HasErrors, doc.PendingFixups)
			for _, ps := range doc.PhaseStatuses {
				cmd.Printf("  %-12s artifact=%-5v success=%v\n", ps.Phase, ps.HasArtifact, ps.Success)
			}
			return nil
		}

		if err := printOnce(); err != nil {
			return err
		}
		if !statusWatch {
			return nil
		}
		return watchStatus(cmd, paths.Receipts, printOnce)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit the status-json.v2 document")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "re-print status whenever a new receipt is written (read-only, never takes the spec lock)")
}

// watchStatus re-runs printOnce whenever a receipt is created in
// receiptsDir, debounced to absorb the burst of events a single atomic
// rename (write tmp, fsync, rename) can generate. It exits on SIGINT or
// SIGTERM. This is purely an introspection convenience: per spec.md §5,
// read-only operations never acquire the per-spec lock.
func watchStatus(cmd *cobra.Command, receiptsDir string, printOnce func() error) error {
	if err := os.MkdirAll(receiptsDir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(receiptsDir); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-sigCh:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrln("watch error:", err)
		case <-pending:
			if err := printOnce(); err != nil {
				cmd.PrintErrln("status error:", err)
			}
		}
	}
}
