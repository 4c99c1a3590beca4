package types

import "sort"

// AtomKind classifies a node in the atom forest.
type AtomKind uint8

const (
	KindFolder AtomKind = iota
	KindFile
	KindFunction
	KindExternal
)

func (k AtomKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	case KindFunction:
		return "function"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// MarshalText lets AtomKind serialize as its lowercase name in JSON.
func (k AtomKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Confidence records how a function atom's source span was obtained.
type Confidence uint8

const (
	// ConfidenceExact means the span came from a successful parse of the
	// containing file and the span's name agrees with the symbol.
	ConfidenceExact Confidence = iota
	// ConfidenceApproximate means the file degraded to text-level recovery
	// or the matched span's name disagreed with the symbol.
	ConfidenceApproximate
	// ConfidenceNotFound means no span could be located; the atom carries
	// no source text.
	ConfidenceNotFound
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidenceApproximate:
		return "approximate-fallback"
	case ConfidenceNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// EdgeKind classifies a dependency edge.
type EdgeKind uint8

const (
	EdgeCalls EdgeKind = iota
	EdgeReferencesExternal
)

func (e EdgeKind) String() string {
	switch e {
	case EdgeCalls:
		return "calls"
	case EdgeReferencesExternal:
		return "references-external"
	default:
		return "unknown"
	}
}

func (e EdgeKind) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// FileID is a compact handle for a document in a loaded index.
// Rationale: uint32 keeps per-occurrence bookkeeping small; an index with
// more than four billion documents is not a realistic input.
type FileID uint32

// Atom is one node of the output forest.
//
// Folder and file atoms use their workspace-relative path as both ID and
// name. Function atoms use a cleaned symbol identifier, line positions from
// the defining occurrence, and extracted source text when a span was found.
type Atom struct {
	ID         string     `json:"id"`
	Kind       AtomKind   `json:"kind"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	ParentID   string     `json:"parent_id,omitempty"`
	StartLine  int        `json:"start_line"`
	EndLine    int        `json:"end_line"`
	SourceText string     `json:"source_text,omitempty"`
	Confidence Confidence `json:"confidence"`
}

// DependencyEdge is one deduplicated edge of the output graph. Weight counts
// how many occurrences collapsed into this edge.
type DependencyEdge struct {
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Kind     EdgeKind `json:"kind"`
	Weight   int      `json:"weight"`
}

// Document is the final serialized shape.
type Document struct {
	Atoms        []Atom           `json:"atoms"`
	Dependencies []DependencyEdge `json:"dependencies"`
}

// RunSummary accumulates recoverable problems and headline counts for one
// conversion run. It is reported on stderr and optionally as JSON; it never
// changes the output document.
type RunSummary struct {
	AtomCount         int      `json:"atom_count"`
	EdgeCount         int      `json:"edge_count"`
	FunctionCount     int      `json:"function_count"`
	DegradedFiles     []string `json:"degraded_files,omitempty"`
	MissingFiles      []string `json:"missing_files,omitempty"`
	DuplicateSymbols  []string `json:"duplicate_symbols,omitempty"`
	UnresolvedSymbols int      `json:"unresolved_symbols"`
	NotFoundSpans     int      `json:"not_found_spans"`
}

// Sort orders the diagnostic slices so summaries are stable across runs.
func (s *RunSummary) Sort() {
	sort.Strings(s.DegradedFiles)
	sort.Strings(s.MissingFiles)
	sort.Strings(s.DuplicateSymbols)
}

// ComputeLineOffsets returns the byte offset of the start of each line.
// Offsets[i] is the offset of line i (0-based).
func ComputeLineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineFromOffset maps a byte offset to a 0-based line number using offsets
// produced by ComputeLineOffsets.
func LineFromOffset(offsets []int, offset int) int {
	// First line whose start is past the offset, minus one.
	idx := sort.SearchInts(offsets, offset+1)
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// LineStartOffset returns the byte offset at which the given 0-based line
// begins, clamped to the last line.
func LineStartOffset(offsets []int, line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(offsets) {
		return offsets[len(offsets)-1]
	}
	return offsets[line]
}
