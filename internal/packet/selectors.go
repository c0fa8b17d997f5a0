package packet

import "github.com/specforge/specforge/internal/spec"

// Selector is one candidate-file rule: every repo-relative path matching
// Glob is offered at Priority (spec.md §4.3 step 1).
type Selector struct {
	Glob     string
	Priority spec.Priority
}

// phaseSelectors holds the phase-specific selector list, keyed by the
// phase whose packet is being built. These are deliberately narrow: the
// pipeline is meant to see the problem statement and prior artifacts, not
// an unbounded repo walk.
var phaseSelectors = map[spec.PhaseID][]Selector{
	spec.Requirements: {
		{Glob: "*.md", Priority: spec.Medium},
		{Glob: "*.txt", Priority: spec.Low},
	},
	spec.Design: {
		{Glob: "*.md", Priority: spec.Medium},
	},
	spec.Tasks: {
		{Glob: "*.md", Priority: spec.Medium},
	},
	spec.Review: {
		{Glob: "*.md", Priority: spec.Medium},
		{Glob: "*.core.yaml", Priority: spec.Low},
	},
	spec.Fixup: {
		{Glob: "*.md", Priority: spec.Low},
	},
	spec.Final: {
		{Glob: "*.md", Priority: spec.Low},
	},
}

// SelectorsFor returns the configured selector list for phase, or nil if
// none is defined (an empty packet of repo candidates is still valid; the
// upstream-artifact inclusions may carry the whole packet).
func SelectorsFor(phase spec.PhaseID) []Selector {
	return phaseSelectors[phase]
}

// upstreamArtifactGlobs names the artifact-name prefixes each phase pulls
// in additively, beyond its selector-matched candidates (spec.md §4.3
// step 2: Design sees Requirements, Tasks sees Requirements+Design, etc).
// These always carry spec.Upstream priority.
var upstreamArtifactGlobs = map[spec.PhaseID][]string{
	spec.Requirements: {},
	spec.Design:       {spec.Requirements.FilePrefix()},
	spec.Tasks:        {spec.Requirements.FilePrefix(), spec.Design.FilePrefix()},
	spec.Review:       {spec.Requirements.FilePrefix(), spec.Design.FilePrefix(), spec.Tasks.FilePrefix()},
	spec.Fixup:        {spec.Review.FilePrefix()},
	spec.Final:        {spec.Requirements.FilePrefix(), spec.Design.FilePrefix(), spec.Tasks.FilePrefix(), spec.Review.FilePrefix()},
}

// UpstreamPrefixesFor returns the artifact filename prefixes to pull in
// additively for phase, always at Upstream priority.
func UpstreamPrefixesFor(phase spec.PhaseID) []string {
	return upstreamArtifactGlobs[phase]
}
