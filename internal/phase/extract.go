package phase

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reHeading    = regexp.MustCompile(`(?m)^#{2,6}\s+.+$`)
	reRequirement = regexp.MustCompile(`(?m)^\s*-\s*REQ-\d+`)
	reUserStory  = regexp.MustCompile(`(?mi)^\s*-\s*(?:US-\d+|as an?\s+\w)`)
	reComponent  = regexp.MustCompile(`(?m)^\s*-\s*(?:COMPONENT|C\d+)[:\-]`)
	reTask       = regexp.MustCompile(`(?m)^\s*-\s*\[[ xX]\]`)
	reFixupPlan  = regexp.MustCompile(`(?m)^FIXUP PLAN:`)
	reDiffBlock  = regexp.MustCompile("(?s)```diff\\n(.*?)```")
)

// counts is the set of deterministic figures every phase extracts from
// its own Markdown output to populate the paired CoreYAML artifact
// (spec.md §4.7 "Postprocess contract... extracted counts").
type counts struct {
	Sections     int
	Requirements int
	UserStories  int
	Components   int
	Tasks        int
}

func extractCounts(markdown []byte) counts {
	s := string(markdown)
	return counts{
		Sections:     len(reHeading.FindAllString(s, -1)),
		Requirements: len(reRequirement.FindAllString(s, -1)),
		UserStories:  len(reUserStory.FindAllString(s, -1)),
		Components:   len(reComponent.FindAllString(s, -1)),
		Tasks:        len(reTask.FindAllString(s, -1)),
	}
}

// toYAML renders counts as the deterministic body of a .core.yaml
// artifact. It is written by hand (rather than via yaml.Marshal) because
// the key order and formatting must be completely fixed across runs;
// canon.CanonicalizeYAML still re-derives the hash from this text the
// same way it would for any other YAML document.
func (c counts) toYAML() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "sections: %d\n", c.Sections)
	fmt.Fprintf(&b, "requirements: %d\n", c.Requirements)
	fmt.Fprintf(&b, "user_stories: %d\n", c.UserStories)
	fmt.Fprintf(&b, "components: %d\n", c.Components)
	fmt.Fprintf(&b, "tasks: %d\n", c.Tasks)
	return []byte(b.String())
}

// fixupPlanPending reports whether Review output contains a FIXUP PLAN:
// marker and, if so, how many diff blocks follow it (spec.md §4.7
// "Review phase specifics").
func fixupPlanPending(reviewMarkdown []byte) (pending bool, diffBlocks int) {
	s := string(reviewMarkdown)
	loc := reFixupPlan.FindStringIndex(s)
	if loc == nil {
		return false, 0
	}
	rest := s[loc[1]:]
	return true, len(reDiffBlock.FindAllString(rest, -1))
}
