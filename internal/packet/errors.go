package packet

import (
	"fmt"

	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/spec"
)

func newSecretError(patternID, location string) error {
	return specerr.New(specerr.KindSecretDetected, "packet contains a likely secret").
		WithContext("pattern", patternID).
		WithContext("location", location).
		WithSuggestion("add the pattern to the ignore list if this is a false positive, or remove the secret from the source file")
}

func newOverflowError(path string, budget spec.PacketBudget) error {
	return specerr.New(specerr.KindPacketOverflow, "packet would exceed its byte/line budget").
		WithContext("path", path).
		WithContext("used_bytes", fmt.Sprintf("%d/%d", budget.UsedBytes, budget.LimitBytes)).
		WithContext("used_lines", fmt.Sprintf("%d/%d", budget.UsedLines, budget.LimitLines)).
		WithSuggestion("trim the candidate set or raise the packet budget")
}
