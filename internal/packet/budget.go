package packet

import "bytes"

// countLines returns the number of newline-terminated lines in b, counting
// a trailing partial line as one more (matches how a text editor reports
// "lines" for content that may or may not end in a newline).
func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte{'\n'})
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}
