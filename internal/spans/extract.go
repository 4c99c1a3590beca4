package spans

import (
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/atomizer/internal/config"
	"github.com/standardbeagle/atomizer/internal/debug"
	"github.com/standardbeagle/atomizer/internal/encoding"
	"github.com/standardbeagle/atomizer/internal/errors"
	"github.com/standardbeagle/atomizer/internal/types"
)

// FileSpans is one file's parse-cache entry: content, line offsets, content
// hash, and the span index (empty when the file degraded to text recovery).
type FileSpans struct {
	Path     string
	RelPath  string
	Content  []byte
	Offsets  []int
	Hash     uint64
	Index    *SpanIndex
	Degraded bool
}

// Result is one extracted span with its confidence.
type Result struct {
	Text       string
	StartLine  int
	EndLine    int
	Confidence types.Confidence
}

// Extractor loads files and matches symbol anchors against their spans.
// Not safe for concurrent use; each worker owns one.
type Extractor struct {
	parser *Parser
	cfg    config.Convert
}

// NewExtractor creates an extractor with its own parser instance.
func NewExtractor(cfg config.Convert) (*Extractor, error) {
	parser, err := NewParser()
	if err != nil {
		return nil, err
	}
	return &Extractor{parser: parser, cfg: cfg}, nil
}

// Close releases the parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

// LoadFile reads and parses one file. Parse failures and oversized files
// return a degraded (but usable) entry; only unreadable files error.
func (e *Extractor) LoadFile(canonicalPath, relPath string) (*FileSpans, error) {
	content, err := os.ReadFile(canonicalPath)
	if err != nil {
		return nil, errors.NewFileError("read", relPath, err)
	}

	fs := &FileSpans{
		Path:    canonicalPath,
		RelPath: relPath,
		Content: content,
		Offsets: types.ComputeLineOffsets(content),
		Hash:    xxhash.Sum64(content),
		Index:   NewSpanIndex(nil),
	}

	if int64(len(content)) > e.cfg.MaxFileSize {
		debug.LogSpans("skipping parse of oversized file %s (%d bytes)\n", relPath, len(content))
		fs.Degraded = true
		return fs, nil
	}

	idx, err := e.parser.ParseSpans(relPath, content)
	if err != nil {
		debug.LogSpans("degraded %s: %v\n", relPath, err)
		fs.Degraded = true
		return fs, nil
	}
	fs.Index = idx
	debug.LogSpans("parsed %s hash=%s spans=%d\n", relPath, encoding.HashToken(fs.Hash), idx.Len())
	return fs, nil
}

// Extract locates the span for a definition anchored at anchorLine. The
// innermost containing span wins; a name mismatch against every containing
// span falls back to the nearest same-name span, then to fuzzy similarity
// along the containing chain, then to the innermost span regardless.
func (e *Extractor) Extract(fs *FileSpans, anchorLine int, wantName string) Result {
	if fs.Degraded {
		start, end, ok := fallbackSpan(fs.Content, fs.Offsets, anchorLine,
			e.cfg.FallbackScanLines, e.cfg.FallbackMaxBodyLines)
		if !ok {
			return NotFound(anchorLine)
		}
		return Result{
			Text:       textBetween(fs.Content, fs.Offsets, start, end),
			StartLine:  start,
			EndLine:    end,
			Confidence: types.ConfidenceApproximate,
		}
	}

	chain := fs.Index.Containing(anchorLine)
	if len(chain) == 0 {
		return NotFound(anchorLine)
	}
	innermost := chain[len(chain)-1]

	if wantName == "" || innermost.Name == wantName {
		return e.result(fs, innermost, types.ConfidenceExact)
	}

	// Walk outward: an enclosing item may carry the anchored name when the
	// anchor landed on a nested helper.
	for i := len(chain) - 2; i >= 0; i-- {
		if chain[i].Name == wantName {
			return e.result(fs, chain[i], types.ConfidenceExact)
		}
	}

	// Nearest same-name span anywhere in the file.
	if span, ok := nearestByName(fs.Index, wantName, anchorLine); ok {
		return e.result(fs, span, types.ConfidenceApproximate)
	}

	// Fuzzy reconciliation along the containing chain covers names mangled
	// by macro expansion.
	if span, ok := bestFuzzy(chain, wantName, e.cfg.FuzzyThreshold); ok {
		return e.result(fs, span, types.ConfidenceApproximate)
	}

	return e.result(fs, innermost, types.ConfidenceApproximate)
}

func (e *Extractor) result(fs *FileSpans, span ItemSpan, conf types.Confidence) Result {
	return Result{
		Text:       textBetween(fs.Content, fs.Offsets, span.StartLine, span.EndLine),
		StartLine:  span.StartLine,
		EndLine:    span.EndLine,
		Confidence: conf,
	}
}

// NotFound is the result for an anchor whose span could not be located at
// all: empty text, anchor line carried through.
func NotFound(anchorLine int) Result {
	return Result{
		StartLine:  anchorLine,
		EndLine:    anchorLine,
		Confidence: types.ConfidenceNotFound,
	}
}

func nearestByName(idx *SpanIndex, name string, anchorLine int) (ItemSpan, bool) {
	best := ItemSpan{}
	bestDist := -1
	for _, span := range idx.All() {
		if span.Name != name {
			continue
		}
		dist := span.StartLine - anchorLine
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = span
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

func bestFuzzy(chain []ItemSpan, wantName string, threshold float64) (ItemSpan, bool) {
	best := ItemSpan{}
	bestScore := float32(threshold)
	found := false
	for i := len(chain) - 1; i >= 0; i-- {
		score, err := edlib.StringsSimilarity(wantName, chain[i].Name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score >= bestScore {
			best = chain[i]
			bestScore = score
			found = true
		}
	}
	return best, found
}

// textBetween returns lines [start, end] without the trailing newline.
func textBetween(buf []byte, offsets []int, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(offsets) {
		return ""
	}
	from := offsets[start]
	to := len(buf)
	if end+1 < len(offsets) {
		to = offsets[end+1]
	}
	if to < from {
		to = from
	}
	return strings.TrimRight(string(buf[from:to]), "\n")
}
