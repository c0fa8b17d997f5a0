package runner

import (
	"bytes"
	"encoding/json"
)

// extractNDJSON scans stdout line by line and returns the last line that
// parses as a JSON value (spec.md §4.6 "parses stdout line-by-line and
// returns the last valid JSON object"). If nothing parses, ok is false and
// the caller falls back to a tail excerpt for diagnostics.
func extractNDJSON(stdout []byte) (result json.RawMessage, ok bool) {
	lines := bytes.Split(stdout, []byte{'\n'})
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(line, &v); err != nil {
			continue
		}
		return json.RawMessage(append([]byte{}, line...)), true
	}
	return nil, false
}

// TailExcerpt returns the last n bytes of b: the diagnostics fallback
// when no NDJSON line parsed, and the bound applied to captured stderr
// before it is carried toward a receipt's stderr_tail.
func TailExcerpt(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
