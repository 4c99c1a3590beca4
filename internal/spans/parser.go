package spans

import (
	"bytes"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/atomizer/internal/debug"
	"github.com/standardbeagle/atomizer/internal/errors"
	"github.com/standardbeagle/atomizer/internal/types"
)

// Parser wraps a tree-sitter Rust parser. Not safe for concurrent use;
// each worker owns its own instance.
type Parser struct {
	parser *tree_sitter.Parser
}

// NewParser creates a parser with the Rust grammar loaded.
func NewParser() (*Parser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load rust grammar: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Close releases the underlying CGO parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseSpans parses one file into its item spans. A syntax tree containing
// error nodes fails the whole file; callers degrade it to text recovery.
func (p *Parser) ParseSpans(path string, content []byte) (idx *SpanIndex, err error) {
	// Tree-sitter mutates input buffers via CGO; parse a defensive copy.
	buf := make([]byte, len(content))
	copy(buf, content)

	defer func() {
		if r := recover(); r != nil {
			debug.LogSpans("tree-sitter panic in %s: %v\n", path, r)
			idx = nil
			err = errors.NewParseFileError(path, fmt.Errorf("parser panic: %v", r))
		}
	}()

	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, errors.NewParseFileError(path, fmt.Errorf("no syntax tree produced"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.NewParseFileError(path, fmt.Errorf("syntax errors in tree"))
	}

	offsets := types.ComputeLineOffsets(buf)
	var items []ItemSpan
	collectItems(root, buf, offsets, &items)
	return NewSpanIndex(items), nil
}

// collectItems walks the tree gathering function items. Bodies of verus!
// macro invocations are token trees to the Rust grammar, so their items
// come from the token scanner instead of the tree.
func collectItems(node *tree_sitter.Node, buf []byte, offsets []int, out *[]ItemSpan) {
	switch node.Kind() {
	case "function_item":
		name := ""
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name = nameNode.Utf8Text(buf)
		}
		start := extendUpward(buf, offsets, int(node.StartPosition().Row))
		*out = append(*out, ItemSpan{
			Kind:      "fn",
			Name:      name,
			StartLine: start,
			EndLine:   int(node.EndPosition().Row),
		})

	case "macro_invocation":
		if macroName(node, buf) == "verus" {
			if tt := tokenTreeChild(node); tt != nil {
				scanned := scanItems(buf, int(tt.StartByte())+1, int(tt.EndByte())-1)
				for _, item := range scanned {
					start := extendUpward(buf, offsets, types.LineFromOffset(offsets, item.fnOffset))
					*out = append(*out, ItemSpan{
						Kind:      item.kind,
						Name:      item.name,
						StartLine: start,
						EndLine:   types.LineFromOffset(offsets, item.endOffset),
					})
				}
			}
			return
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		collectItems(node.NamedChild(i), buf, offsets, out)
	}
}

func macroName(node *tree_sitter.Node, buf []byte) string {
	if m := node.ChildByFieldName("macro"); m != nil {
		return m.Utf8Text(buf)
	}
	return ""
}

func tokenTreeChild(node *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Kind() == "token_tree" {
			return child
		}
	}
	return nil
}

// extendUpward widens a span start over the contiguous run of doc comments,
// ordinary comments, and attributes directly above it.
func extendUpward(buf []byte, offsets []int, startLine int) int {
	for startLine > 0 {
		prev := lineText(buf, offsets, startLine-1)
		trimmed := bytes.TrimSpace(prev)
		if len(trimmed) == 0 {
			break
		}
		if bytes.HasPrefix(trimmed, []byte("///")) ||
			bytes.HasPrefix(trimmed, []byte("//")) ||
			bytes.HasPrefix(trimmed, []byte("#[")) ||
			bytes.HasPrefix(trimmed, []byte("#![")) {
			startLine--
			continue
		}
		break
	}
	return startLine
}

// lineText returns the bytes of one 0-based line without its newline.
func lineText(buf []byte, offsets []int, line int) []byte {
	if line < 0 || line >= len(offsets) {
		return nil
	}
	start := offsets[line]
	end := len(buf)
	if line+1 < len(offsets) {
		end = offsets[line+1] - 1
	}
	if end < start {
		end = start
	}
	return buf[start:end]
}
