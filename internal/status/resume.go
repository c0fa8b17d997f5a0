package status

import (
	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/spec"
)

const ResumeSchemaVersion = "resume-json.v1"

// CurrentInputs lists only the metadata resume planning needs, never the
// artifacts themselves (spec.md §6 "never includes full packet or raw
// artifacts").
type CurrentInputs struct {
	AvailableArtifacts   []string `json:"available_artifacts"`
	SpecExists           bool     `json:"spec_exists"`
	LatestCompletedPhase *string  `json:"latest_completed_phase,omitempty"`
}

// ResumeDocument is the resume-json.v1 payload.
type ResumeDocument struct {
	SchemaVersion string        `json:"schema_version"`
	SpecID        string        `json:"spec_id"`
	Phase         string        `json:"phase"`
	CurrentInputs CurrentInputs `json:"current_inputs"`
	NextSteps     []string      `json:"next_steps"`
}

// BuildResume determines which phase a `specforge run` should resume at:
// the first phase in pipeline order with no persisted artifact, or Final
// if every phase is already complete.
func BuildResume(specID string, artifacts *artifact.Manager, specExists bool) (ResumeDocument, error) {
	var latestCompleted *string
	var resumePhase spec.PhaseID = spec.Requirements
	foundGap := false

	var available []string
	for _, phase := range spec.All() {
		names, err := artifacts.ListForPhase(phase)
		if err != nil {
			return ResumeDocument{}, err
		}
		available = append(available, names...)

		if len(names) > 0 && !foundGap {
			name := phase.String()
			latestCompleted = &name
			if phase < spec.Final {
				resumePhase = phase + 1
			} else {
				resumePhase = spec.Final
			}
		} else if len(names) == 0 {
			foundGap = true
		}
	}

	nextSteps := []string{"specforge run " + resumePhase.String()}
	if resumePhase == spec.Fixup {
		nextSteps = []string{"specforge fixup preview", "specforge fixup apply", "specforge run final"}
	}

	return ResumeDocument{
		SchemaVersion: ResumeSchemaVersion,
		SpecID:        specID,
		Phase:         resumePhase.String(),
		CurrentInputs: CurrentInputs{
			AvailableArtifacts:   available,
			SpecExists:           specExists,
			LatestCompletedPhase: latestCompleted,
		},
		NextSteps: nextSteps,
	}, nil
}
