// Package canon implements the canonicalization and content-hashing
// subsystem (spec.md §4.1): Markdown normalization and JCS (RFC 8785)
// canonical JSON for YAML/JSON documents, both reduced to a BLAKE3 hex
// digest that defines artifact identity.
package canon

import (
	"fmt"

	"github.com/specforge/specforge/internal/spec"
)

// Result is the canonical bytes of a document plus its content hash.
type Result struct {
	Canonical []byte
	Hash      string // hex BLAKE3 digest of Canonical
}

// Error reports a canonicalization failure. Markdown normalization never
// fails; only the YAML/JSON path can (spec.md §4.1 "Error").
type Error struct {
	Phase  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("canonicalization failed for phase %s: %s", e.Phase, e.Reason)
}

// Canonicalize normalizes content according to typ's rules and hashes
// the result. phase is used only for error attribution.
func Canonicalize(content []byte, typ spec.ArtifactType, phase string) (Result, error) {
	switch typ {
	case spec.Markdown:
		out := NormalizeMarkdown(content)
		return Result{Canonical: out, Hash: HashBytes(out)}, nil
	case spec.CoreYAML:
		out, err := CanonicalizeYAML(content)
		if err != nil {
			return Result{}, &Error{Phase: phase, Reason: err.Error()}
		}
		return Result{Canonical: out, Hash: HashBytes(out)}, nil
	default:
		return Result{}, &Error{Phase: phase, Reason: "unknown artifact type"}
	}
}
