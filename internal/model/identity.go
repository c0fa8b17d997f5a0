// Package model holds the small value type identifying which backend
// model and CLI produced a receipt (spec.md §6 Receipt schema fields
// model_full_name, model_alias, claude_cli_version).
package model

// Identity names the backend that will execute a phase invocation.
type Identity struct {
	FullName   string
	Alias      string
	CLIVersion string
}
