package phase

import (
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

type finalPhase struct{}

func (finalPhase) ID() spec.PhaseID     { return spec.Final }
func (finalPhase) Deps() []spec.PhaseID { return spec.Final.Deps() }
func (finalPhase) CanResume() bool      { return true }

func (finalPhase) Prompt(ctx Context) string {
	return "Assemble the final specification document: merge Requirements, Design, Tasks, and the " +
		"resolved Review/Fixup state into one authoritative Markdown document suitable for handoff."
}

func (finalPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Final, ctx)
}

func (finalPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Final"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Final, warnings)
	}

	c := extractCounts(raw)
	artifacts := []spec.Artifact{
		{Name: "50-final", Content: raw, Type: spec.Markdown},
		{Name: "50-final", Content: c.toYAML(), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
