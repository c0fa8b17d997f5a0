package phase

import (
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

// fixupPhase is the pipeline stage that narrates what the Fixup Engine
// (internal/fixup) applied — it does not itself parse or apply diffs.
type fixupPhase struct{}

func (fixupPhase) ID() spec.PhaseID     { return spec.Fixup }
func (fixupPhase) Deps() []spec.PhaseID { return spec.Fixup.Deps() }
func (fixupPhase) CanResume() bool      { return true }

func (fixupPhase) Prompt(ctx Context) string {
	return "Summarize, in Markdown, the fixups applied from the Review phase's FIXUP PLAN and confirm " +
		"each target file's new state is consistent with the Requirements and Design artifacts."
}

func (fixupPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Fixup, ctx)
}

func (fixupPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Fixup"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Fixup, warnings)
	}

	c := extractCounts(raw)
	artifacts := []spec.Artifact{
		{Name: "40-fixup", Content: raw, Type: spec.Markdown},
		{Name: "40-fixup", Content: c.toYAML(), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
