// Package graph assembles the atom forest and the deduplicated dependency
// edges from resolved definitions, extracted spans, and attributed calls.
package graph

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/atomizer/internal/resolver"
	"github.com/standardbeagle/atomizer/internal/spans"
	"github.com/standardbeagle/atomizer/internal/types"
	"github.com/standardbeagle/atomizer/pkg/pathutil"
)

// ExternalAtomID is the id of the single synthetic atom absorbing every
// dependency that leaves the analyzed tree.
const ExternalAtomID = "external"

// Input carries everything the builder needs. Spans is parallel to
// Functions.
type Input struct {
	Files     []string
	Functions []*resolver.Definition
	Spans     []spans.Result
	Calls     []resolver.CallSite
}

// Build produces the final document. Atom order is folders, files,
// functions, then the external atom; edges are ordered by (source, target,
// kind). Both orders are independent of input traversal order.
func Build(in Input) *types.Document {
	doc := &types.Document{Atoms: []types.Atom{}, Dependencies: []types.DependencyEdge{}}

	// Folder atoms for every ancestor directory of every file.
	folderSet := make(map[string]struct{})
	for _, file := range in.Files {
		for _, dir := range pathutil.AncestorDirs(file) {
			folderSet[dir] = struct{}{}
		}
	}
	folders := make([]string, 0, len(folderSet))
	for dir := range folderSet {
		folders = append(folders, dir)
	}
	sort.Strings(folders)
	for _, dir := range folders {
		doc.Atoms = append(doc.Atoms, types.Atom{
			ID:       dir,
			Kind:     types.KindFolder,
			Name:     baseName(dir),
			Path:     dir,
			ParentID: pathutil.ParentDir(dir),
		})
	}

	// File atoms, one per index document.
	files := make([]string, len(in.Files))
	copy(files, in.Files)
	sort.Strings(files)
	for _, file := range files {
		doc.Atoms = append(doc.Atoms, types.Atom{
			ID:       file,
			Kind:     types.KindFile,
			Name:     baseName(file),
			Path:     file,
			ParentID: pathutil.ParentDir(file),
		})
	}

	// Function atoms in resolver order (file, then start line). Identifier
	// collisions disambiguate with the 1-based anchor line.
	atomIDs := make(map[*resolver.Definition]string, len(in.Functions))
	taken := make(map[string]struct{}, len(in.Functions))
	for _, file := range files {
		taken[file] = struct{}{}
	}
	for _, dir := range folders {
		taken[dir] = struct{}{}
	}
	for i, def := range in.Functions {
		id := def.Identifier
		if _, clash := taken[id]; clash {
			id = fmt.Sprintf("%s:%d", def.Identifier, def.StartLine+1)
		}
		for n := 2; ; n++ {
			if _, clash := taken[id]; !clash {
				break
			}
			id = fmt.Sprintf("%s:%d#%d", def.Identifier, def.StartLine+1, n)
		}
		taken[id] = struct{}{}
		atomIDs[def] = id

		span := in.Spans[i]
		doc.Atoms = append(doc.Atoms, types.Atom{
			ID:         id,
			Kind:       types.KindFunction,
			Name:       def.DisplayName,
			Path:       def.RelPath,
			ParentID:   def.RelPath,
			StartLine:  span.StartLine + 1,
			EndLine:    span.EndLine + 1,
			SourceText: span.Text,
			Confidence: span.Confidence,
		})
	}

	// Edges, collapsed by (source, target, kind) with call-site counts.
	type edgeKey struct {
		src  string
		tgt  string
		kind types.EdgeKind
	}
	bySymbol := make(map[string]*resolver.Definition, len(in.Functions))
	for _, def := range in.Functions {
		bySymbol[def.Symbol] = def
	}
	weights := make(map[edgeKey]int)
	needExternal := false
	for _, call := range in.Calls {
		src, ok := atomIDs[call.Caller]
		if !ok {
			continue
		}
		var key edgeKey
		if call.Class == resolver.TargetLocal {
			callee := bySymbol[call.CalleeSymbol]
			if callee == nil {
				continue
			}
			key = edgeKey{src: src, tgt: atomIDs[callee], kind: types.EdgeCalls}
		} else {
			key = edgeKey{src: src, tgt: ExternalAtomID, kind: types.EdgeReferencesExternal}
			needExternal = true
		}
		weights[key]++
	}

	if needExternal {
		doc.Atoms = append(doc.Atoms, types.Atom{
			ID:   ExternalAtomID,
			Kind: types.KindExternal,
			Name: ExternalAtomID,
			Path: "",
		})
	}

	edges := make([]types.DependencyEdge, 0, len(weights))
	for key, weight := range weights {
		edges = append(edges, types.DependencyEdge{
			SourceID: key.src,
			TargetID: key.tgt,
			Kind:     key.kind,
			Weight:   weight,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		if edges[i].TargetID != edges[j].TargetID {
			return edges[i].TargetID < edges[j].TargetID
		}
		return edges[i].Kind < edges[j].Kind
	})
	doc.Dependencies = edges

	return doc
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
