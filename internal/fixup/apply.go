package fixup

import (
	"os"

	"github.com/specforge/specforge/internal/atomicfile"
	"github.com/specforge/specforge/internal/difflib"
)

// ChangeSummary describes what one block would do (Preview) or did
// (Apply) to its target file.
type ChangeSummary struct {
	TargetFile string
	HunksTotal int
	HunksOK    int
	Applied    bool
}

// Preview validates paths and dry-runs the patch application for every
// block without touching any file (spec.md §4.9 "Preview (default) emits
// a change-summary without touching files").
func Preview(repoRoot string, blocks []Block, allowLinks bool) ([]ChangeSummary, error) {
	var summaries []ChangeSummary
	for _, b := range blocks {
		resolved, err := ValidatePath(repoRoot, b.TargetFile, allowLinks)
		if err != nil {
			return nil, err
		}

		original := ""
		if data, err := os.ReadFile(resolved); err == nil {
			original = string(data)
		}

		patches, err := difflib.ParsePatch(b.DiffText)
		if err != nil {
			return nil, err
		}
		_, applied := difflib.Apply(patches, original)

		ok := 0
		for _, a := range applied {
			if a {
				ok++
			}
		}
		summaries = append(summaries, ChangeSummary{
			TargetFile: b.TargetFile,
			HunksTotal: len(applied),
			HunksOK:    ok,
			Applied:    false,
		})
	}
	return summaries, nil
}

// Apply validates paths, applies every block's hunks, and atomically
// writes each changed file through a temp copy (spec.md §4.9
// "Apply writes through a temp copy, runs the patch, and renames
// atomically"). Any hunk that fails even within the bounded fuzzy search
// fails the whole block with FuzzyMatchFailed; no partial file is
// written for that block.
func Apply(repoRoot string, blocks []Block, allowLinks bool) ([]ChangeSummary, error) {
	var summaries []ChangeSummary
	for _, b := range blocks {
		resolved, err := ValidatePath(repoRoot, b.TargetFile, allowLinks)
		if err != nil {
			return nil, err
		}

		original := ""
		if data, err := os.ReadFile(resolved); err == nil {
			original = string(data)
		}

		patches, err := difflib.ParsePatch(b.DiffText)
		if err != nil {
			return nil, err
		}
		patched, applied := difflib.Apply(patches, original)
		if !difflib.AllApplied(applied) {
			return nil, newFuzzyMatchFailed(b.TargetFile)
		}

		if err := atomicfile.Write(resolved, []byte(patched), 0o644); err != nil {
			return nil, err
		}

		summaries = append(summaries, ChangeSummary{
			TargetFile: b.TargetFile,
			HunksTotal: len(applied),
			HunksOK:    len(applied),
			Applied:    true,
		})
	}
	return summaries, nil
}
