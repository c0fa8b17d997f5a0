// Package fixup implements the Fixup Engine (spec.md §4.9): it extracts
// unified-diff blocks from a Review phase's FIXUP PLAN, validates every
// target path against path-escape and link attacks, and applies the
// hunks in Preview or Apply mode.
package fixup

import (
	"regexp"
	"strings"
)

// Block is one parsed diff unit: the file it targets and its raw
// unified-diff text (handed to internal/difflib for hunk parsing).
type Block struct {
	TargetFile string
	DiffText   string
}

var (
	reFixupMarker   = regexp.MustCompile(`(?m)^FIXUP PLAN:\s*$`)
	reConflictStart = regexp.MustCompile(`(?m)^<{7}\s`)
	reDiffFence     = regexp.MustCompile("(?s)```diff\\n(.*?)```")
	reNewFileHeader = regexp.MustCompile(`(?m)^\+\+\+ (?:b/)?(.+)$`)
)

// Parse extracts every diff block from Review output. It recognizes two
// triggers (spec.md §4.9 "Parser"): a `FIXUP PLAN:` marker followed by
// fenced ```diff blocks, or raw `<<<<<<<` conflict markers elsewhere in
// the text. When neither is present, it returns an empty, non-error
// result — a clean review has nothing to fix up.
func Parse(reviewMarkdown string) ([]Block, error) {
	var source string
	if loc := reFixupMarker.FindStringIndex(reviewMarkdown); loc != nil {
		source = reviewMarkdown[loc[1]:]
	} else if reConflictStart.MatchString(reviewMarkdown) {
		source = reviewMarkdown
	} else {
		return nil, nil
	}

	var blocks []Block
	for _, m := range reDiffFence.FindAllStringSubmatch(source, -1) {
		body := m[1]
		target, err := targetFile(body)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, Block{TargetFile: target, DiffText: body})
	}
	return blocks, nil
}

func targetFile(diffText string) (string, error) {
	m := reNewFileHeader.FindStringSubmatch(diffText)
	if m == nil {
		return "", newParseError("diff block is missing a \"+++\" target file header")
	}
	return strings.TrimSpace(m[1]), nil
}
