// Package artifact persists and loads the canonicalized phase outputs
// (Markdown + CoreYAML documents) under a spec's artifacts directory
// (spec.md §4.1, §4.7 "Postprocess contract").
package artifact

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specforge/specforge/internal/atomicfile"
	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/spec"
)

// Manager persists artifacts under a single directory.
type Manager struct {
	Dir string
}

func New(dir string) *Manager {
	return &Manager{Dir: dir}
}

// Write canonicalizes a.Content per its type, stamps the resulting hash
// onto the returned artifact, and atomically persists it.
func (m *Manager) Write(a spec.Artifact, phaseLabel string) (spec.Artifact, error) {
	result, err := canon.Canonicalize(a.Content, a.Type, phaseLabel)
	if err != nil {
		return spec.Artifact{}, err
	}
	a.Content = result.Canonical
	a.BLAKE3Hash = result.Hash

	path := filepath.Join(m.Dir, a.Filename())
	if err := atomicfile.Write(path, a.Content, 0o644); err != nil {
		return spec.Artifact{}, err
	}
	return a, nil
}

// Read loads one artifact by its on-disk filename.
func (m *Manager) Read(filename string) (spec.Artifact, error) {
	path := filepath.Join(m.Dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Artifact{}, err
	}
	typ := spec.Markdown
	if strings.HasSuffix(filename, spec.CoreYAML.Extension()) {
		typ = spec.CoreYAML
	}
	name := strings.TrimSuffix(strings.TrimSuffix(filename, spec.CoreYAML.Extension()), spec.Markdown.Extension())
	return spec.Artifact{
		Name:       name,
		Content:    data,
		Type:       typ,
		BLAKE3Hash: canon.HashBytes(data),
	}, nil
}

// ListForPhase returns every artifact filename whose name begins with
// phase's numeric prefix, in lexicographic order.
func (m *Manager) ListForPhase(phase spec.PhaseID) ([]string, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	prefix := phase.FilePrefix()
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether phase has at least one persisted artifact,
// used by the orchestrator's dependency-gating check (spec.md §4.7).
func (m *Manager) Exists(phase spec.PhaseID) (bool, error) {
	names, err := m.ListForPhase(phase)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ListAll loads every persisted artifact across all phases, in
// lexicographic filename order, for the status reporter's artifact
// summary (spec.md §6 "Status JSON... artifacts: [{path, blake3_first8}]").
func (m *Manager) ListAll() ([]spec.Artifact, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]spec.Artifact, 0, len(names))
	for _, n := range names {
		a, err := m.Read(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
