package phase

import (
	"fmt"
	"regexp"
	"strings"
)

const minResponseLength = 40

// metaSummaryPrefixes are response openers that indicate the backend
// narrated its own process instead of producing the requested document
// (spec.md §4.7 "response must not start with meta-summary patterns").
var metaSummaryPrefixes = []string{
	"here is", "here's", "sure,", "certainly,", "i have completed",
	"i've completed", "below is", "as requested",
}

func hasMetaSummaryPrefix(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	for _, p := range metaSummaryPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

var headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// validate runs the shared postprocess checks (spec.md §4.7) and returns
// one warning string per violation. An empty result means the response
// is clean.
func validate(raw []byte, requiredHeaders []string) []string {
	var warnings []string
	s := string(raw)

	if hasMetaSummaryPrefix(s) {
		warnings = append(warnings, "response begins with a meta-summary preamble instead of the requested document")
	}
	if len(strings.TrimSpace(s)) < minResponseLength {
		warnings = append(warnings, fmt.Sprintf("response is shorter than the minimum expected length (%d bytes)", minResponseLength))
	}

	present := map[string]bool{}
	for _, m := range headerRe.FindAllStringSubmatch(s, -1) {
		present[strings.ToLower(strings.TrimSpace(m[1]))] = true
	}
	for _, want := range requiredHeaders {
		if !present[strings.ToLower(want)] {
			warnings = append(warnings, fmt.Sprintf("missing required section header %q", want))
		}
	}
	return warnings
}
