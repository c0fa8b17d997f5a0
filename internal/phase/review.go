package phase

import (
	"fmt"
	"strings"

	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

type reviewPhase struct{}

func (reviewPhase) ID() spec.PhaseID     { return spec.Review }
func (reviewPhase) Deps() []spec.PhaseID { return spec.Review.Deps() }
func (reviewPhase) CanResume() bool      { return true }

func (reviewPhase) Prompt(ctx Context) string {
	return "You are reviewing the Requirements, Design, and Tasks artifacts in the packet for " +
		"inconsistency, missing coverage, or ambiguity. If corrections are needed, end your response " +
		"with a line `FIXUP PLAN:` followed by one fenced ```diff block per file that needs a change."
}

func (reviewPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Review, ctx)
}

func (reviewPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Review"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Review, warnings)
	}

	pending, diffBlocks := fixupPlanPending(raw)
	c := extractCounts(raw)

	var yaml strings.Builder
	yaml.Write(c.toYAML())
	fmt.Fprintf(&yaml, "pending_fixups: %t\n", pending)
	fmt.Fprintf(&yaml, "fixup_diff_blocks: %d\n", diffBlocks)

	artifacts := []spec.Artifact{
		{Name: "30-review", Content: raw, Type: spec.Markdown},
		{Name: "30-review", Content: []byte(yaml.String()), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
