package phase

import (
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

type tasksPhase struct{}

func (tasksPhase) ID() spec.PhaseID     { return spec.Tasks }
func (tasksPhase) Deps() []spec.PhaseID { return spec.Tasks.Deps() }
func (tasksPhase) CanResume() bool      { return true }

func (tasksPhase) Prompt(ctx Context) string {
	return "You are drafting the Tasks breakdown. Using the Requirements and Design artifacts in the " +
		"packet, produce a Markdown document with a checklist of implementation tasks (`- [ ] ...`), " +
		"ordered by dependency."
}

func (tasksPhase) MakePacket(ctx Context) (packet.Packet, error) {
	return buildPacket(spec.Tasks, ctx)
}

func (tasksPhase) Postprocess(raw []byte, ctx Context) (Result, error) {
	warnings := validate(raw, []string{"Tasks"})
	if ctx.StrictValidation && len(warnings) > 0 {
		return Result{}, newValidationFailed(spec.Tasks, warnings)
	}

	c := extractCounts(raw)
	artifacts := []spec.Artifact{
		{Name: "20-tasks", Content: raw, Type: spec.Markdown},
		{Name: "20-tasks", Content: c.toYAML(), Type: spec.CoreYAML},
	}
	return Result{Artifacts: artifacts, Warnings: warnings}, nil
}
