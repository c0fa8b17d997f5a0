package spec

// ArtifactType distinguishes the two canonicalization rule sets an
// artifact can be hashed under.
type ArtifactType int

const (
	Markdown ArtifactType = iota
	CoreYAML
)

func (t ArtifactType) String() string {
	if t == CoreYAML {
		return "core_yaml"
	}
	return "markdown"
}

// Extension returns the on-disk file extension for this artifact type.
func (t ArtifactType) Extension() string {
	if t == CoreYAML {
		return ".core.yaml"
	}
	return ".md"
}

// Artifact is a named, typed, content-addressed phase output.
type Artifact struct {
	Name       string // e.g. "00-requirements"
	Content    []byte // canonicalized bytes
	Type       ArtifactType
	BLAKE3Hash string // hex digest of Content
}

// Filename returns the stable on-disk filename for this artifact.
func (a Artifact) Filename() string {
	return a.Name + a.Type.Extension()
}

// Priority orders candidate files in packet assembly. Higher-priority
// files are listed first; within a priority, selection is lexicographic.
type Priority int

const (
	Low Priority = iota
	Medium
	High
	Upstream
)

func (p Priority) String() string {
	switch p {
	case Upstream:
		return "upstream"
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalJSON emits the priority name, keeping receipts readable and
// independent of the enum's numeric ordering.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts the names emitted by MarshalJSON.
func (p *Priority) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"upstream"`:
		*p = Upstream
	case `"high"`:
		*p = High
	case `"medium"`:
		*p = Medium
	default:
		*p = Low
	}
	return nil
}

// FileEvidence records what was read from disk for one packet entry.
type FileEvidence struct {
	Path               string   `json:"path"`
	BLAKE3PreRedaction string   `json:"blake3_pre_redaction"`
	Priority           Priority `json:"priority"`
	LineRangeStart     int      `json:"line_range_start,omitempty"` // 0 if not applicable
	LineRangeEnd       int      `json:"line_range_end,omitempty"`
}
