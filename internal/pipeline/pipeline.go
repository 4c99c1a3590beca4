// Package pipeline orchestrates one conversion run: load the index,
// resolve symbols, extract spans across a bounded worker pool, assemble the
// graph, and report a run summary.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/atomizer/internal/config"
	"github.com/standardbeagle/atomizer/internal/debug"
	"github.com/standardbeagle/atomizer/internal/graph"
	"github.com/standardbeagle/atomizer/internal/resolver"
	"github.com/standardbeagle/atomizer/internal/scip"
	"github.com/standardbeagle/atomizer/internal/spans"
	"github.com/standardbeagle/atomizer/internal/types"
	"github.com/standardbeagle/atomizer/pkg/pathutil"
)

// Options selects the inputs for one run.
type Options struct {
	IndexPath string
	Root      string
	Config    *config.Config
}

// Outcome is a finished run: the document to serialize plus its summary.
type Outcome struct {
	Document *types.Document
	Summary  types.RunSummary
}

// fileWork is the unit handed to one worker: every definition in one file.
// Workers exclusively own their result slots, so no locking is needed.
type fileWork struct {
	relPath string
	defs    []*resolver.Definition
	slots   []int // indices into the shared results slice
}

// Run executes the full conversion. The returned error is fatal: a
// malformed index, an inaccessible root, or cancellation. Per-file and
// per-symbol problems degrade into the summary instead.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("source root inaccessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", opts.Root)
	}

	idx, err := scip.Load(opts.IndexPath)
	if err != nil {
		return nil, err
	}

	crate := config.CrateName(opts.Root)
	res := resolver.Resolve(idx, crate)
	debug.Printf("resolved %d functions, %d calls (crate %q)\n",
		len(res.Functions), len(res.Calls), crate)

	results := make([]spans.Result, len(res.Functions))
	summary := types.RunSummary{
		FunctionCount:     len(res.Functions),
		DuplicateSymbols:  res.Duplicates,
		UnresolvedSymbols: res.UnresolvedCount,
	}

	work, skipped := partition(res.Functions, cfg)
	for _, slot := range skipped {
		results[slot] = spans.NotFound(res.Functions[slot].StartLine)
	}

	if err := extractAll(ctx, cfg, opts.Root, work, results, &summary); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(idx.Documents))
	for _, doc := range idx.Documents {
		files = append(files, doc.RelativePath)
	}
	doc := graph.Build(graph.Input{
		Files:     files,
		Functions: res.Functions,
		Spans:     results,
		Calls:     res.Calls,
	})

	for _, r := range results {
		if r.Confidence == types.ConfidenceNotFound {
			summary.NotFoundSpans++
		}
	}
	summary.AtomCount = len(doc.Atoms)
	summary.EdgeCount = len(doc.Dependencies)
	summary.Sort()

	return &Outcome{Document: doc, Summary: summary}, nil
}

// partition groups definitions by file, in resolver order, and separates
// out the slots of files the include/exclude globs filter away.
func partition(functions []*resolver.Definition, cfg *config.Config) (work []fileWork, skipped []int) {
	byFile := make(map[string]*fileWork)
	var order []string
	for i, def := range functions {
		if !selected(def.RelPath, cfg) {
			skipped = append(skipped, i)
			continue
		}
		w, ok := byFile[def.RelPath]
		if !ok {
			w = &fileWork{relPath: def.RelPath}
			byFile[def.RelPath] = w
			order = append(order, def.RelPath)
		}
		w.defs = append(w.defs, def)
		w.slots = append(w.slots, i)
	}
	for _, relPath := range order {
		work = append(work, *byFile[relPath])
	}
	return work, skipped
}

func selected(relPath string, cfg *config.Config) bool {
	if len(cfg.Include) > 0 {
		included := false
		for _, pattern := range cfg.Include {
			if ok, _ := doublestar.Match(pattern, relPath); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pattern := range cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	return true
}

// extractAll runs span extraction over a bounded pool. Each worker checks
// out an extractor (and its CGO parser) for the duration of one file.
func extractAll(ctx context.Context, cfg *config.Config, root string,
	work []fileWork, results []spans.Result, summary *types.RunSummary) error {

	workers := cfg.EffectiveWorkers()
	if workers > len(work) && len(work) > 0 {
		workers = len(work)
	}
	if len(work) == 0 {
		return nil
	}

	pool := make(chan *spans.Extractor, workers)
	for i := 0; i < workers; i++ {
		e, err := spans.NewExtractor(cfg.Convert)
		if err != nil {
			close(pool)
			for e := range pool {
				e.Close()
			}
			return err
		}
		pool <- e
	}
	defer func() {
		close(pool)
		for e := range pool {
			e.Close()
		}
	}()

	// Per-file outcome slots keep workers lock-free; diagnostics merge
	// after the group completes.
	type fileOutcome struct {
		degraded bool
		missing  bool
	}
	outcomes := make([]fileOutcome, len(work))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range work {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w := work[i]
			e := <-pool
			defer func() { pool <- e }()

			canonical := pathutil.ToCanonical(w.relPath, root)
			fs, err := e.LoadFile(canonical, w.relPath)
			if err != nil {
				// Missing or unreadable file: every anchor in it is
				// unlocatable, but the atoms survive as not-found.
				debug.LogSpans("missing %s: %v\n", w.relPath, err)
				outcomes[i].missing = true
				for k, slot := range w.slots {
					results[slot] = spans.NotFound(w.defs[k].StartLine)
				}
				return nil
			}
			if fs.Degraded {
				outcomes[i].degraded = true
			}
			for k, slot := range w.slots {
				def := w.defs[k]
				results[slot] = e.Extract(fs, def.StartLine, def.DisplayName)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, outcome := range outcomes {
		if outcome.degraded {
			summary.DegradedFiles = append(summary.DegradedFiles, work[i].relPath)
		}
		if outcome.missing {
			summary.MissingFiles = append(summary.MissingFiles, work[i].relPath)
		}
	}
	return nil
}
