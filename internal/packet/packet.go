// Package packet builds the bounded, evidenced input sent to the LLM
// backend for one phase invocation (spec.md §4.3). A Packet is the only
// thing that crosses into the Runner; everything about what the model saw
// is reconstructable from its PacketEvidence.
package packet

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/redact"
	"github.com/specforge/specforge/internal/spec"
)

// Packet is the assembled, content-addressed input for one phase run.
type Packet struct {
	Content    []byte
	BLAKE3Hash string
	Evidence   spec.PacketEvidence
}

// candidate is one file offered to the assembler before budget/secret
// checks run.
type candidate struct {
	path     string // repo-relative
	abs      string
	priority spec.Priority
}

// Builder assembles packets for a single repo root against one Redactor.
type Builder struct {
	RepoRoot   string
	ArtifactDir string // directory holding persisted phase artifacts
	Redactor   *redact.Redactor
	Budget     spec.PacketBudget
}

// NewBuilder constructs a Builder with the default packet budget.
func NewBuilder(repoRoot, artifactDir string, redactor *redact.Redactor) *Builder {
	return &Builder{
		RepoRoot:    repoRoot,
		ArtifactDir: artifactDir,
		Redactor:    redactor,
		Budget:      spec.DefaultPacketBudget(),
	}
}

// Build runs the full spec.md §4.3 algorithm for phase: candidate
// enumeration, upstream inclusion, secret scan, budget enforcement, and
// deterministic assembly.
func (b *Builder) Build(phase spec.PhaseID, problemStatement []byte) (Packet, error) {
	candidates, err := b.enumerate(phase)
	if err != nil {
		return Packet{}, err
	}

	sortCandidates(candidates)

	budget := b.Budget
	var evidence []spec.FileEvidence
	var parts [][]byte

	appendEntry := func(label, path string, raw []byte, priority spec.Priority) error {
		preHash := canon.HashBytes(raw)

		if matches := b.Redactor.Scan(string(raw), path); len(matches) > 0 {
			return newSecretError(matches[0].PatternID, path)
		}
		redacted := b.Redactor.RedactBytes(raw)

		header := []byte(fmt.Sprintf("--- %s (%s) ---\n", label, path))
		entry := append(append([]byte{}, header...), redacted...)
		if len(parts) > 0 {
			entry = append([]byte{'\n'}, entry...)
		}

		lines := countLines(entry)
		if !budget.Fits(len(entry), lines) {
			return newOverflowError(path, budget)
		}
		budget.UsedBytes += len(entry)
		budget.UsedLines += lines

		evidence = append(evidence, spec.FileEvidence{
			Path:               path,
			BLAKE3PreRedaction: preHash,
			Priority:           priority,
			LineRangeStart:     1,
			LineRangeEnd:       countLines(raw),
		})
		parts = append(parts, entry)
		return nil
	}

	if phase == spec.Requirements && len(problemStatement) > 0 {
		if err := appendEntry("problem-statement", "problem_statement.md", problemStatement, spec.Upstream); err != nil {
			return Packet{}, err
		}
	}

	for _, prefix := range UpstreamPrefixesFor(phase) {
		files, err := upstreamFiles(b.ArtifactDir, prefix)
		if err != nil {
			return Packet{}, err
		}
		for _, f := range files {
			raw, err := os.ReadFile(f)
			if err != nil {
				return Packet{}, err
			}
			rel, _ := filepath.Rel(b.ArtifactDir, f)
			if err := appendEntry("upstream-artifact", rel, raw, spec.Upstream); err != nil {
				return Packet{}, err
			}
		}
	}

	for _, c := range candidates {
		raw, err := os.ReadFile(c.abs)
		if err != nil {
			return Packet{}, err
		}
		if err := appendEntry("source", c.path, raw, c.priority); err != nil {
			return Packet{}, err
		}
	}

	var content []byte
	for _, p := range parts {
		content = append(content, p...)
	}

	return Packet{
		Content:    content,
		BLAKE3Hash: canon.HashBytes(content),
		Evidence: spec.PacketEvidence{
			Files:    evidence,
			MaxBytes: budget.LimitBytes,
			MaxLines: budget.LimitLines,
		},
	}, nil
}

// enumerate walks RepoRoot applying phase's selectors (spec.md §4.3 step 1).
func (b *Builder) enumerate(phase spec.PhaseID) ([]candidate, error) {
	selectors := SelectorsFor(phase)
	if len(selectors) == 0 || b.RepoRoot == "" {
		return nil, nil
	}

	var out []candidate
	err := filepath.WalkDir(b.RepoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.RepoRoot, path)
		if err != nil {
			return err
		}
		for _, sel := range selectors {
			matched, err := filepath.Match(sel.Glob, filepath.Base(rel))
			if err != nil {
				return err
			}
			if matched {
				out = append(out, candidate{path: rel, abs: path, priority: sel.Priority})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sortCandidates orders by priority (Upstream>High>Medium>Low), then
// lexicographic path, per spec.md §4.3 step 1.
func sortCandidates(c []candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].priority != c[j].priority {
			return c[i].priority > c[j].priority
		}
		return c[i].path < c[j].path
	})
}

// upstreamFiles returns, in lexicographic order, every file in dir whose
// name begins with prefix (the phase's numeric artifact prefix, e.g. "00").
func upstreamFiles(dir, prefix string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if len(e.Name()) >= len(prefix) && e.Name()[:len(prefix)] == prefix {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// WriteDebugPacket persists a copy of content to
// <contextDir>/<phase>-packet.txt, only called after Build has already
// succeeded (i.e. redaction and secret-scan already passed).
func WriteDebugPacket(contextDir string, phase spec.PhaseID, content []byte) error {
	if err := os.MkdirAll(contextDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(contextDir, phase.String()+"-packet.txt")
	return os.WriteFile(path, content, 0o644)
}
