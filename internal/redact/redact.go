// Package redact implements configurable, pattern-based secret detection
// and masking (spec.md §4.2). A single immutable Redactor instance is
// shared across all consumers within one orchestrator run.
package redact

import "regexp"

const mask = "***REDACTED***"

// Pattern is one named, compiled secret-detection rule.
type Pattern struct {
	ID string
	re *regexp.Regexp
}

// Redactor applies the union of built-in and user-supplied patterns,
// minus an ignore list, to arbitrary text.
type Redactor struct {
	patterns []Pattern
}

// New compiles the built-in pattern set plus extra, excluding any pattern
// whose ID appears in ignore.
func New(extra []NamedPattern, ignore []string) (*Redactor, error) {
	ignored := make(map[string]bool, len(ignore))
	for _, id := range ignore {
		ignored[id] = true
	}

	var patterns []Pattern
	for _, bp := range builtinPatterns {
		if ignored[bp.ID] {
			continue
		}
		patterns = append(patterns, Pattern{ID: bp.ID, re: bp.re})
	}
	for _, np := range extra {
		if ignored[np.ID] {
			continue
		}
		re, err := regexp.Compile(np.Expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, Pattern{ID: np.ID, re: re})
	}

	return &Redactor{patterns: patterns}, nil
}

// NamedPattern is a user-supplied pattern before compilation.
type NamedPattern struct {
	ID   string
	Expr string
}

// RedactString masks every substring matching any active pattern.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.re.ReplaceAllString(s, mask)
	}
	return s
}

// RedactBytes is the []byte form of RedactString.
func (r *Redactor) RedactBytes(b []byte) []byte {
	return []byte(r.RedactString(string(b)))
}

// RedactError returns a redacted copy of err's message, for the
// human-visible-error-display rule in spec.md §7.
func (r *Redactor) RedactError(err error) string {
	if err == nil {
		return ""
	}
	return r.RedactString(err.Error())
}

// Match describes one secret-scan hit (spec.md §4.3 "Secret scan").
type Match struct {
	PatternID string
	Location  string // e.g. file path or "line N"
}

// Scan reports every pattern match in s without masking it, used by the
// Packet Builder's pre-assembly secret scan (spec.md §4.3).
func (r *Redactor) Scan(s string, location string) []Match {
	var matches []Match
	for _, p := range r.patterns {
		if p.re.MatchString(s) {
			matches = append(matches, Match{PatternID: p.ID, Location: location})
		}
	}
	return matches
}
