package phase

import (
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

type designPhase struct{}

func (designPhase) ID() spec.PhaseID     { return spec.Design }
func (designPhase) Deps() []spec.PhaseID { return spec.Design.Deps() }
func (designPhase) CanResume() bool      { return true }

func (designPhase) Prompt(ctx Context) string {
	return "You are drafting the Design specification. Using the Requirements artifact in the packet, " +
		"produce a Markdown document describing components (prefixed `COMPONENT` or `C<N>:`), their " +
		"responsibilities, and the data flow between them."
}

func (designPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Design, ctx)
}

func (designPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Design"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Design, warnings)
	}

	c := extractCounts(raw)
	artifacts := []spec.Artifact{
		{Name: "10-design", Content: raw, Type: spec.Markdown},
		{Name: "10-design", Content: c.toYAML(), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
