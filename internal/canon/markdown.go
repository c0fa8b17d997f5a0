package canon

import (
	"bytes"
	"regexp"
	"strings"
)

var tildeFence = regexp.MustCompile(`(?m)^~~~([^\n]*)$`)

// NormalizeMarkdown applies the v1 Markdown canonicalization rules from
// spec.md §4.1:
//
//	- normalize CR/CRLF -> LF
//	- strip trailing whitespace per line
//	- convert ~~~[lang] fences to ```[lang]
//	- collapse any run of >= 3 trailing newlines to exactly two
//	- terminate the file with exactly one trailing \n
//
// No reordering is performed, and this never fails.
func NormalizeMarkdown(content []byte) []byte {
	s := string(content)

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = tildeFence.ReplaceAllString(s, "```$1")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")

	// Collapse any run of blank lines down to exactly one blank line
	// (i.e. at most two consecutive "\n"s) anywhere in the document.
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}

	s = strings.TrimRight(s, "\n")
	s += "\n"

	var buf bytes.Buffer
	buf.WriteString(s)
	return buf.Bytes()
}
