package phase

import (
	"fmt"

	"github.com/specforge/specforge/internal/spec"
)

// PlaceholderResponse builds the deterministic stand-in document used
// when a phase runs in dry-run mode: the backend is never invoked, but
// the rest of the pipeline (postprocess, artifact write, receipt) runs
// exactly as it would on real output. The document satisfies the shared
// postprocess checks, so a dry run exercises the same success path a
// live run does.
func PlaceholderResponse(id spec.PhaseID, specID string) []byte {
	title := titleFor(id)
	return []byte(fmt.Sprintf(
		"# %s\n\nDry-run placeholder for spec %q. The %s backend was not invoked; "+
			"this document exists so artifacts and receipts can be produced and "+
			"inspected without an LLM call.\n",
		title, specID, id,
	))
}

func titleFor(id spec.PhaseID) string {
	switch id {
	case spec.Requirements:
		return "Requirements"
	case spec.Design:
		return "Design"
	case spec.Tasks:
		return "Tasks"
	case spec.Review:
		return "Review"
	case spec.Fixup:
		return "Fixup"
	default:
		return "Final"
	}
}
