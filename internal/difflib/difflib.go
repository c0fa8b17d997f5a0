// Package difflib wraps github.com/sergi/go-diff/diffmatchpatch for the
// Fixup Engine's unified-diff parsing and bounded fuzzy application
// (spec.md §4.9). diffmatchpatch's own patch format already speaks the
// same "@@ -l,s +l,s @@" hunk-header language as a unified diff, and its
// Match* tunables already implement bounded fuzzy search — exactly what
// the spec's "search ±N lines around each hunk" requirement needs.
package difflib

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FuzzSearchLines bounds how far PatchApply will look around a hunk's
// recorded position before giving up (spec.md §4.9 "search ±N lines").
const FuzzSearchLines = 20

func newEngine() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.MatchDistance = FuzzSearchLines * 80 // approx. chars per N lines
	dmp.PatchMargin = 4
	dmp.MatchThreshold = 0.4
	return dmp
}

// ParsePatch parses unified-diff text for a single file into patch hunks.
func ParsePatch(text string) ([]diffmatchpatch.Patch, error) {
	dmp := newEngine()
	patches, err := dmp.PatchFromText(text)
	if err != nil {
		return nil, fmt.Errorf("parsing diff hunks: %w", err)
	}
	return patches, nil
}

// Apply applies patches to original, returning the patched text and,
// per hunk, whether it applied cleanly (exactly or within the bounded
// fuzzy search) or failed.
func Apply(patches []diffmatchpatch.Patch, original string) (patched string, applied []bool) {
	dmp := newEngine()
	patched, applied = dmp.PatchApply(patches, original)
	return patched, applied
}

// AllApplied reports whether every hunk in applied succeeded.
func AllApplied(applied []bool) bool {
	for _, ok := range applied {
		if !ok {
			return false
		}
	}
	return len(applied) > 0
}
