// Package scip models the decoded JSON form of a SCIP code-intelligence
// index, as emitted by `scip print --json`, and validates its structure
// before conversion starts.
package scip

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/standardbeagle/atomizer/internal/errors"
)

// Symbol role bitflags. Only Definition matters for atom construction;
// the rest pass through for completeness.
const (
	RoleDefinition = 1 << 0
	RoleImport     = 1 << 1
	RoleWriteAccess = 1 << 2
	RoleReadAccess  = 1 << 3
)

// SCIP symbol kinds used for function-like classification.
const (
	SymbolKindMethod      = 6
	SymbolKindFunction    = 17
	SymbolKindConstructor = 26
	SymbolKindMacro       = 80
)

// Index is the top-level decoded document.
type Index struct {
	Metadata        Metadata            `json:"metadata"`
	Documents       []Document          `json:"documents"`
	ExternalSymbols []SymbolInformation `json:"external_symbols,omitempty"`
}

type Metadata struct {
	Version     int      `json:"version"`
	ToolInfo    ToolInfo `json:"tool_info"`
	ProjectRoot string   `json:"project_root"`
}

type ToolInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Arguments []string `json:"arguments,omitempty"`
}

// Document is one indexed source file with its occurrences and the symbols
// it declares.
type Document struct {
	Language     string              `json:"language"`
	RelativePath string              `json:"relative_path"`
	Occurrences  []Occurrence        `json:"occurrences"`
	Symbols      []SymbolInformation `json:"symbols"`
}

// Occurrence is a single symbol mention. Range is either
// [startLine, startChar, endChar] for single-line ranges or
// [startLine, startChar, endLine, endChar]; lines are 0-based.
type Occurrence struct {
	Range          []int  `json:"range"`
	Symbol         string `json:"symbol"`
	SymbolRoles    int    `json:"symbol_roles"`
	EnclosingRange []int  `json:"enclosing_range,omitempty"`
}

// IsDefinition reports whether the Definition role bit is set.
func (o *Occurrence) IsDefinition() bool {
	return o.SymbolRoles&RoleDefinition != 0
}

// StartLine returns the 0-based line on which the occurrence begins.
func (o *Occurrence) StartLine() int {
	return o.Range[0]
}

// EndLine returns the 0-based line on which the occurrence ends.
func (o *Occurrence) EndLine() int {
	if len(o.Range) == 4 {
		return o.Range[2]
	}
	return o.Range[0]
}

type SymbolInformation struct {
	Symbol          string         `json:"symbol"`
	Documentation   []string       `json:"documentation,omitempty"`
	Relationships   []Relationship `json:"relationships,omitempty"`
	Kind            int            `json:"kind,omitempty"`
	DisplayName     string         `json:"display_name,omitempty"`
	EnclosingSymbol string         `json:"enclosing_symbol,omitempty"`
}

type Relationship struct {
	Symbol           string `json:"symbol"`
	IsReference      bool   `json:"is_reference,omitempty"`
	IsImplementation bool   `json:"is_implementation,omitempty"`
	IsTypeDefinition bool   `json:"is_type_definition,omitempty"`
	IsDefinition     bool   `json:"is_definition,omitempty"`
}

// Load reads, decodes, and validates a decoded SCIP JSON index from disk.
// Any structural defect returns a fatal MalformedIndexError.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewMalformedIndexError(path, "read", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates index JSON. The path is used only for error
// reporting.
func Parse(path string, data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.NewMalformedIndexError(path, "decode", err)
	}

	normalizeDocumentPaths(&idx)

	if err := validate(path, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// normalizeDocumentPaths strips scheme prefixes some indexers attach to
// document paths and normalizes separators.
func normalizeDocumentPaths(idx *Index) {
	for i := range idx.Documents {
		p := idx.Documents[i].RelativePath
		p = strings.TrimPrefix(p, "file://")
		p = strings.ReplaceAll(p, "\\", "/")
		idx.Documents[i].RelativePath = p
	}
}

// validate enforces the structural invariants conversion relies on.
// A failure here means the index cannot be trusted; conversion aborts
// rather than producing a plausible-looking but wrong graph.
func validate(path string, idx *Index) error {
	seen := make(map[string]int, len(idx.Documents))
	declared := make(map[string]struct{})

	for di, doc := range idx.Documents {
		if doc.RelativePath == "" {
			return errors.NewMalformedIndexError(path,
				fmt.Sprintf("document %d has empty relative_path", di), nil)
		}
		if prev, dup := seen[doc.RelativePath]; dup {
			return errors.NewMalformedIndexError(path,
				fmt.Sprintf("documents %d and %d share relative_path %q", prev, di, doc.RelativePath), nil)
		}
		seen[doc.RelativePath] = di

		for oi, occ := range doc.Occurrences {
			if err := validateRange(occ.Range); err != nil {
				return errors.NewMalformedIndexError(path,
					fmt.Sprintf("document %q occurrence %d: %v", doc.RelativePath, oi, err), nil)
			}
			if occ.Symbol == "" {
				return errors.NewMalformedIndexError(path,
					fmt.Sprintf("document %q occurrence %d has empty symbol", doc.RelativePath, oi), nil)
			}
			declared[occ.Symbol] = struct{}{}
		}
		for _, sym := range doc.Symbols {
			declared[sym.Symbol] = struct{}{}
		}
	}
	for _, sym := range idx.ExternalSymbols {
		declared[sym.Symbol] = struct{}{}
	}

	for si, sym := range idx.ExternalSymbols {
		for _, rel := range sym.Relationships {
			if _, ok := declared[rel.Symbol]; !ok {
				return errors.NewMalformedIndexError(path,
					fmt.Sprintf("external symbol %d references undeclared symbol %q", si, rel.Symbol), nil)
			}
		}
	}
	return nil
}

func validateRange(r []int) error {
	if len(r) != 3 && len(r) != 4 {
		return fmt.Errorf("range has %d elements, want 3 or 4", len(r))
	}
	for _, v := range r {
		if v < 0 {
			return fmt.Errorf("range has negative element %d", v)
		}
	}
	if len(r) == 4 && r[2] < r[0] {
		return fmt.Errorf("range ends on line %d before it starts on line %d", r[2], r[0])
	}
	return nil
}
