// Package spans extracts function source spans from Rust and Verus files.
// Each file is parsed once into a sorted span index; symbol anchors are then
// matched against it by containment.
package spans

import "sort"

// ItemSpan is one function-like item located in a file. Lines are 0-based
// and inclusive; StartLine includes contiguous leading doc comments and
// attributes.
type ItemSpan struct {
	Kind      string
	Name      string
	StartLine int
	EndLine   int
}

// Contains reports whether the span covers the given line.
func (s ItemSpan) Contains(line int) bool {
	return s.StartLine <= line && line <= s.EndLine
}

// SpanIndex holds a file's item spans ordered by start line, ties broken by
// wider span first so outer items precede the items nested inside them.
type SpanIndex struct {
	spans []ItemSpan
}

// NewSpanIndex sorts the given spans into index order.
func NewSpanIndex(spans []ItemSpan) *SpanIndex {
	sorted := make([]ItemSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].EndLine > sorted[j].EndLine
	})
	return &SpanIndex{spans: sorted}
}

// Len returns the number of indexed spans.
func (x *SpanIndex) Len() int {
	return len(x.spans)
}

// All returns the spans in index order.
func (x *SpanIndex) All() []ItemSpan {
	return x.spans
}

// Containing returns every span covering the line, ordered outermost first.
// Only spans starting at or before the line can contain it, so the scan is
// bounded by a binary search on start lines.
func (x *SpanIndex) Containing(line int) []ItemSpan {
	limit := sort.Search(len(x.spans), func(i int) bool {
		return x.spans[i].StartLine > line
	})
	var chain []ItemSpan
	for i := 0; i < limit; i++ {
		if x.spans[i].Contains(line) {
			chain = append(chain, x.spans[i])
		}
	}
	return chain
}

// Innermost returns the narrowest span covering the line.
func (x *SpanIndex) Innermost(line int) (ItemSpan, bool) {
	chain := x.Containing(line)
	if len(chain) == 0 {
		return ItemSpan{}, false
	}
	return chain[len(chain)-1], true
}
