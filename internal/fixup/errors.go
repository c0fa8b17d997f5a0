package fixup

import "github.com/specforge/specforge/internal/specerr"

func newParseError(reason string) error {
	return specerr.New(specerr.KindValidationFailed, reason)
}

func newFuzzyMatchFailed(target string) error {
	return specerr.New(specerr.KindFuzzyMatchFailed, "one or more hunks could not be matched within the bounded fuzzy search window").
		WithContext("path", target).
		WithSuggestion("regenerate the fixup plan against the current file contents")
}
