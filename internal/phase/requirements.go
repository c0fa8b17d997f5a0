package phase

import (
	"fmt"

	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

type requirementsPhase struct{}

func (requirementsPhase) ID() spec.PhaseID      { return spec.Requirements }
func (requirementsPhase) Deps() []spec.PhaseID  { return spec.Requirements.Deps() }
func (requirementsPhase) CanResume() bool       { return true }

func (requirementsPhase) Prompt(ctx Context) string {
	return fmt.Sprintf(
		"You are drafting the Requirements specification for the following problem statement.\n\n%s\n\n"+
			"Produce a Markdown document with numbered requirements (prefixed `REQ-`) and user stories "+
			"(prefixed `US-` or phrased \"As a ... I want ... so that ...\").",
		string(ctx.ProblemStatement),
	)
}

func (requirementsPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Requirements, ctx)
}

func (requirementsPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Requirements"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Requirements, warnings)
	}

	c := extractCounts(raw)
	artifacts := []spec.Artifact{
		{Name: "00-requirements", Content: raw, Type: spec.Markdown},
		{Name: "00-requirements", Content: c.toYAML(), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
