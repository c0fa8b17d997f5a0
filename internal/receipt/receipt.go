// Package receipt persists and lists the append-only Receipt documents
// produced by every phase invocation (spec.md §3, §6).
package receipt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/specforge/specforge/internal/atomicfile"
	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/spec"
)

// Manager persists receipts under a single receipts directory.
type Manager struct {
	Dir string
}

func New(dir string) *Manager {
	return &Manager{Dir: dir}
}

// Write atomically persists r under its canonical filename and returns
// the path written.
func (m *Manager) Write(r spec.Receipt) (string, error) {
	phase, ok := spec.ParsePhaseID(r.Phase)
	if !ok {
		phase = spec.Requirements
	}
	name := spec.ReceiptFilename(phase, r.EmittedAt)
	path := filepath.Join(m.Dir, name)

	// Receipts are persisted in JCS form (spec.md §3 "Receipt — canonical
	// JSON"), so two receipts with equal content are byte-equal on disk.
	data, err := canon.MarshalJCS(r)
	if err != nil {
		return "", err
	}
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// List returns every receipt in the directory, oldest first, for a given
// phase (or every phase if phase is -1... callers pass spec.All() to
// enumerate explicitly instead).
func (m *Manager) List() ([]spec.Receipt, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]spec.Receipt, 0, len(names))
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(m.Dir, n))
		if err != nil {
			return nil, err
		}
		var r spec.Receipt
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Latest returns the most recent receipt for phase, or nil if none exists.
func (m *Manager) Latest(phase spec.PhaseID) (*spec.Receipt, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	var latest *spec.Receipt
	for i := range all {
		if all[i].Phase != phase.String() {
			continue
		}
		r := all[i]
		if latest == nil || r.EmittedAt.After(latest.EmittedAt) {
			latest = &r
		}
	}
	return latest, nil
}
