// Package resolver turns a validated SCIP index into resolved function
// definitions and attributed call sites: which functions exist, where each
// is defined, and which function every reference occurrence belongs to.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/atomizer/internal/debug"
	"github.com/standardbeagle/atomizer/internal/scip"
	"github.com/standardbeagle/atomizer/internal/types"
)

// TargetClass tags where a call's callee lives.
type TargetClass uint8

const (
	// TargetLocal means the callee has a definition in the analyzed tree.
	TargetLocal TargetClass = iota
	// TargetExternal means the callee belongs to another crate.
	TargetExternal
	// TargetUnresolved means the callee names this crate but no definition
	// occurrence was found for it.
	TargetUnresolved
)

func (t TargetClass) String() string {
	switch t {
	case TargetLocal:
		return "local"
	case TargetExternal:
		return "external"
	case TargetUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Definition is one resolved function definition.
type Definition struct {
	Symbol      string
	DisplayName string
	Identifier  string
	Kind        int
	FileID      types.FileID
	RelPath     string
	StartLine   int
	EndLine     int
}

// CallSite is one attributed reference occurrence: Caller's body mentions
// CalleeSymbol at Line.
type CallSite struct {
	Caller       *Definition
	CalleeSymbol string
	Class        TargetClass
	File         string
	Line         int
}

// Resolution is the resolver's complete output.
type Resolution struct {
	// Functions holds every resolved definition, ordered by
	// (file, start line, symbol).
	Functions []*Definition
	BySymbol  map[string]*Definition
	Calls     []CallSite
	// Duplicates records symbols that carried more than one Definition
	// occurrence; the first one won.
	Duplicates []string
	// UnresolvedCount counts attributed calls whose callee could not be
	// classified as local or external.
	UnresolvedCount int
}

// functionLike reports whether a symbol should become a function atom.
// SCIP kinds Method, Function, Constructor, and Macro qualify; when the
// indexer left the kind unset, a "()." descriptor suffix is the fallback
// signal rust-analyzer uses for callables.
func functionLike(kind int, symbol string) bool {
	switch kind {
	case scip.SymbolKindMethod, scip.SymbolKindFunction,
		scip.SymbolKindConstructor, scip.SymbolKindMacro:
		return true
	}
	if kind == 0 {
		return strings.HasSuffix(symbol, "().")
	}
	return false
}

// anchor is a definition start line inside one file, for positional caller
// attribution.
type anchor struct {
	line int
	def  *Definition
}

// Resolve walks the index in three passes: collect symbol information,
// resolve definitions, then attribute references. crateName (from
// Cargo.toml) separates same-crate unresolved symbols from other-crate
// externals; pass "" when unknown, in which case every undefined callee
// classifies external.
func Resolve(idx *scip.Index, crateName string) *Resolution {
	res := &Resolution{BySymbol: make(map[string]*Definition)}

	// Pass 1: symbol information across all documents and the external
	// symbol table.
	functionSymbols := make(map[string]struct{})
	displayNames := make(map[string]string)
	enclosure := make(map[string]string)

	collect := func(sym scip.SymbolInformation) {
		if sym.EnclosingSymbol != "" {
			enclosure[sym.Symbol] = sym.EnclosingSymbol
		}
		if functionLike(sym.Kind, sym.Symbol) {
			functionSymbols[sym.Symbol] = struct{}{}
			if sym.DisplayName != "" {
				displayNames[sym.Symbol] = sym.DisplayName
			}
		}
	}
	for _, doc := range idx.Documents {
		for _, sym := range doc.Symbols {
			collect(sym)
		}
	}
	for _, sym := range idx.ExternalSymbols {
		collect(sym)
	}

	// Occurrence-only symbols never reach the symbol table; the descriptor
	// suffix still identifies callables among them.
	for _, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			if _, known := functionSymbols[occ.Symbol]; !known && functionLike(0, occ.Symbol) {
				functionSymbols[occ.Symbol] = struct{}{}
			}
		}
	}

	// Pass 2: definitions. The defining document's path is authoritative;
	// the first Definition occurrence wins and later ones are recorded as
	// duplicates.
	anchorsByFile := make(map[string][]anchor)
	for fileID, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			if !occ.IsDefinition() {
				continue
			}
			if _, isFn := functionSymbols[occ.Symbol]; !isFn {
				continue
			}
			if prev, dup := res.BySymbol[occ.Symbol]; dup {
				res.Duplicates = append(res.Duplicates, fmt.Sprintf(
					"%s first defined at %s:%d, duplicate at %s:%d",
					prev.Identifier, prev.RelPath, prev.StartLine+1,
					doc.RelativePath, occ.StartLine()+1))
				continue
			}

			name := displayNames[occ.Symbol]
			def := &Definition{
				Symbol:      occ.Symbol,
				DisplayName: name,
				Identifier:  CleanIdentifier(occ.Symbol, name),
				FileID:      types.FileID(fileID),
				RelPath:     strings.TrimPrefix(doc.RelativePath, "/"),
				StartLine:   occ.StartLine(),
				EndLine:     occ.EndLine(),
			}
			if def.DisplayName == "" {
				segs := strings.Split(def.Identifier, "/")
				def.DisplayName = segs[len(segs)-1]
			}
			res.BySymbol[occ.Symbol] = def
			res.Functions = append(res.Functions, def)
			anchorsByFile[doc.RelativePath] = append(anchorsByFile[doc.RelativePath],
				anchor{line: occ.StartLine(), def: def})
		}
	}

	sort.Slice(res.Functions, func(i, j int) bool {
		a, b := res.Functions[i], res.Functions[j]
		if a.RelPath != b.RelPath {
			return a.RelPath < b.RelPath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.Symbol < b.Symbol
	})
	for _, anchors := range anchorsByFile {
		sort.Slice(anchors, func(i, j int) bool { return anchors[i].line < anchors[j].line })
	}

	// Pass 3: attribute every non-definition reference of a callable to
	// its containing function.
	for _, doc := range idx.Documents {
		anchors := anchorsByFile[doc.RelativePath]
		for _, occ := range doc.Occurrences {
			if occ.IsDefinition() {
				continue
			}
			if _, isFn := functionSymbols[occ.Symbol]; !isFn {
				continue
			}

			caller := callerFor(occ, enclosure, functionSymbols, res.BySymbol, anchors)
			if caller == nil || caller.Symbol == occ.Symbol {
				continue
			}

			class := classify(occ.Symbol, res.BySymbol, crateName)
			if class == TargetUnresolved {
				res.UnresolvedCount++
				debug.LogResolve("unresolved callee %s at %s:%d\n",
					occ.Symbol, doc.RelativePath, occ.StartLine()+1)
			}
			res.Calls = append(res.Calls, CallSite{
				Caller:       caller,
				CalleeSymbol: occ.Symbol,
				Class:        class,
				File:         doc.RelativePath,
				Line:         occ.StartLine(),
			})
		}
	}

	return res
}

// callerFor finds the function containing a reference. The enclosing-symbol
// chain is authoritative when the indexer emitted it; otherwise the nearest
// definition anchor at or above the reference line in the same file stands
// in.
func callerFor(occ scip.Occurrence, enclosure map[string]string,
	functionSymbols map[string]struct{}, bySymbol map[string]*Definition,
	anchors []anchor) *Definition {

	current := occ.Symbol
	for {
		enclosing, ok := enclosure[current]
		if !ok {
			break
		}
		if _, isFn := functionSymbols[enclosing]; isFn {
			if def, ok := bySymbol[enclosing]; ok {
				return def
			}
			break
		}
		current = enclosing
	}

	// Positional fallback: greatest anchor line <= reference line.
	line := occ.StartLine()
	idx := sort.Search(len(anchors), func(i int) bool { return anchors[i].line > line })
	if idx == 0 {
		return nil
	}
	return anchors[idx-1].def
}

// classify tags a callee symbol. A symbol with a local definition is local;
// otherwise its crate segment decides between external and unresolved.
func classify(symbol string, bySymbol map[string]*Definition, crateName string) TargetClass {
	if _, ok := bySymbol[symbol]; ok {
		return TargetLocal
	}
	if crateName != "" && SymbolCrate(symbol) == crateName {
		return TargetUnresolved
	}
	return TargetExternal
}
