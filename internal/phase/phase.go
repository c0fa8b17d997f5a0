// Package phase implements the six software-specification stages that
// make up one pipeline run (spec.md §4.7): Requirements, Design, Tasks,
// Review, Fixup, Final. Each phase is a thin capability set — id, deps,
// prompt, packet construction, postprocessing — rather than a class
// hierarchy, per spec.md §9 "Polymorphic phases... a tagged variant per
// phase is equivalent and preferable where closed enumeration is known."
package phase

import (
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/spec"
)

// Context carries everything a phase needs to build its prompt and
// packet; it is assembled by the orchestrator from workspace paths and
// effective configuration.
type Context struct {
	SpecID           string
	RepoRoot         string
	ArtifactDir      string
	ProblemStatement []byte
	StrictValidation bool
	PacketBuilder    *packet.Builder
}

// Result is what Postprocess hands back to the orchestrator: the
// artifacts to persist plus any non-fatal warnings surfaced from
// validation (spec.md §4.7 "in strict mode, failures raise
// ValidationFailed; otherwise they are logged").
type Result struct {
	Artifacts []spec.Artifact
	Warnings  []string
}

// Phase is the capability set every pipeline stage implements.
type Phase interface {
	ID() spec.PhaseID
	Deps() []spec.PhaseID
	CanResume() bool
	Prompt(ctx Context) string
	MakePacket(ctx Context) (packet.Packet, error)
	Postprocess(raw []byte, ctx Context) (Result, error)
}

// ByID returns the Phase implementation for id.
func ByID(id spec.PhaseID) Phase {
	switch id {
	case spec.Requirements:
		return requirementsPhase{}
	case spec.Design:
		return designPhase{}
	case spec.Tasks:
		return tasksPhase{}
	case spec.Review:
		return reviewPhase{}
	case spec.Fixup:
		return fixupPhase{}
	default:
		return finalPhase{}
	}
}

// buildPacket is the shared MakePacket body: every phase just calls
// through to the configured Builder with its own phase id.
func buildPacket(id spec.PhaseID, ctx Context) (packet.Packet, error) {
	return ctx.PacketBuilder.Build(id, ctx.ProblemStatement)
}
