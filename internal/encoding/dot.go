package encoding

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/standardbeagle/atomizer/internal/types"
)

// WriteDOT renders the dependency graph as Graphviz DOT, with function
// atoms clustered by the directory of their defining file.
func WriteDOT(w io.Writer, doc *types.Document) error {
	var b strings.Builder
	b.WriteString("digraph atoms {\n")
	b.WriteString("    rankdir=LR;\n")
	b.WriteString("    node [shape=box, fontname=\"Helvetica\"];\n\n")

	groups := make(map[string][]types.Atom)
	var hasExternal bool
	for _, atom := range doc.Atoms {
		switch atom.Kind {
		case types.KindFunction:
			dir := parentOf(atom.Path)
			groups[dir] = append(groups[dir], atom)
		case types.KindExternal:
			hasExternal = true
		}
	}

	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for i, dir := range dirs {
		label := dir
		if label == "" {
			label = "(root)"
		}
		fmt.Fprintf(&b, "    subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "        label=%s;\n", quote(label))
		b.WriteString("        style=rounded;\n")
		for _, atom := range groups[dir] {
			fmt.Fprintf(&b, "        %s [label=%s];\n", quote(atom.ID), quote(atom.Name))
		}
		b.WriteString("    }\n")
	}

	if hasExternal {
		fmt.Fprintf(&b, "    %s [label=\"external\", shape=ellipse, style=dashed];\n",
			quote("external"))
	}

	b.WriteString("\n")
	for _, edge := range doc.Dependencies {
		attrs := ""
		if edge.Kind == types.EdgeReferencesExternal {
			attrs = ", style=dashed"
		}
		fmt.Fprintf(&b, "    %s -> %s [label=\"%d\"%s];\n",
			quote(edge.SourceID), quote(edge.TargetID), edge.Weight, attrs)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func parentOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}
