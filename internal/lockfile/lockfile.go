// Package lockfile implements the optional per-spec version pin (spec.md
// §4.5): a JSON document recording the model/CLI/schema versions a spec
// was first run under, and drift detection against the current run.
package lockfile

import (
	"encoding/json"
	"os"

	"github.com/specforge/specforge/internal/atomicfile"
)

const Filename = "lock.json"

// Lockfile pins the versions a spec's pipeline was locked to.
type Lockfile struct {
	ModelFullName    string `json:"model_full_name"`
	ClaudeCLIVersion string `json:"claude_cli_version"`
	SchemaVersion    string `json:"schema_version"`
}

// Current is the set of versions the running invocation actually has.
type Current struct {
	ModelFullName    string
	ClaudeCLIVersion string
	SchemaVersion    string
}

// FieldDrift names one field whose locked and current values differ.
type FieldDrift struct {
	Field   string `json:"field"`
	Locked  string `json:"locked"`
	Current string `json:"current"`
}

// Drift is nil when no field differs.
type Drift struct {
	Fields []FieldDrift
}

// MarshalJSON flattens Drift to its field list; the wrapper struct
// exists for the nil-means-no-drift contract, not for the wire shape.
func (d *Drift) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Fields)
}

// Load reads a Lockfile from path. A missing file is not an error: it
// simply means the spec has no lock (spec.md §4.5 "created only on
// explicit request").
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, err
	}
	return &lf, nil
}

// Save atomically writes lf to path.
func Save(path string, lf Lockfile) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, data, 0o644)
}

// Detect compares a loaded lock against cur, returning nil if every
// pinned field matches (spec.md §4.5 Fields: model_full_name,
// claude_cli_version, schema_version).
func Detect(locked *Lockfile, cur Current) *Drift {
	if locked == nil {
		return nil
	}
	var fields []FieldDrift
	if locked.ModelFullName != cur.ModelFullName {
		fields = append(fields, FieldDrift{"model_full_name", locked.ModelFullName, cur.ModelFullName})
	}
	if locked.ClaudeCLIVersion != cur.ClaudeCLIVersion {
		fields = append(fields, FieldDrift{"claude_cli_version", locked.ClaudeCLIVersion, cur.ClaudeCLIVersion})
	}
	if locked.SchemaVersion != cur.SchemaVersion {
		fields = append(fields, FieldDrift{"schema_version", locked.SchemaVersion, cur.SchemaVersion})
	}
	if len(fields) == 0 {
		return nil
	}
	return &Drift{Fields: fields}
}
