package phase

import (
	"strings"

	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/spec"
)

func newValidationFailed(phase spec.PhaseID, warnings []string) error {
	return specerr.New(specerr.KindValidationFailed, "phase output failed strict validation").
		WithContext("phase", phase.String()).
		WithContext("issues", strings.Join(warnings, "; "))
}

func newDependencyNotSatisfied(phase, dependency spec.PhaseID) error {
	return specerr.New(specerr.KindDependencyNotSatisfied, "required upstream phase has not produced an artifact").
		WithContext("phase", phase.String()).
		WithContext("dependency", dependency.String()).
		WithSuggestion("run the dependency phase first, or pass --force to override")
}
