package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/atomizer/internal/config"
	"github.com/standardbeagle/atomizer/internal/debug"
	"github.com/standardbeagle/atomizer/internal/encoding"
	"github.com/standardbeagle/atomizer/internal/pipeline"
	"github.com/standardbeagle/atomizer/internal/types"
	"github.com/standardbeagle/atomizer/internal/version"
)

var Version = version.Version

func main() {
	if debug.IsDebugEnabled() {
		if logPath, err := debug.InitDebugLogFile(); err == nil {
			fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
			defer debug.CloseDebugLog()
		}
	}

	app := &cli.App{
		Name:    "atomizer",
		Usage:   "convert a SCIP index of a Rust/Verus tree into atoms and dependency edges",
		Version: Version,
		Commands: []*cli.Command{
			convertCommand(),
			dotCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "atomizer: %v\n", err)
		os.Exit(1)
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "index",
			Usage:    "decoded SCIP index JSON (from `scip print --json`)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "source tree root",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config file (defaults to .atomizer.kdl in the root)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "span extraction workers (0 = one per CPU)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "glob of files to extract spans from (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "glob of files to skip span extraction for (repeatable)",
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "write the atoms document as JSON",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:     "output",
				Usage:    "output JSON path",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "summary-json",
				Usage: "print the run summary as JSON on stdout",
			},
		),
		Action: runConvert,
	}
}

func dotCommand() *cli.Command {
	return &cli.Command{
		Name:  "dot",
		Usage: "write the dependency graph as Graphviz DOT",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:     "output",
				Usage:    "output DOT path",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "limit the graph to functions defined in this file",
			},
		),
		Action: runDot,
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context, root string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.LoadKDLFile(configPath, root)
		if err == nil && cfg == nil {
			err = fmt.Errorf("config file %s not found", configPath)
		}
	} else {
		cfg, err = config.LoadKDL(root)
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if c.IsSet("workers") {
		cfg.Convert.Workers = c.Int("workers")
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}

	return cfg, cfg.Validate()
}

func runPipeline(c *cli.Context) (*pipeline.Outcome, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfigWithOverrides(c, root)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipeline.Run(ctx, pipeline.Options{
		IndexPath: c.String("index"),
		Root:      root,
		Config:    cfg,
	})
}

func runConvert(c *cli.Context) error {
	out, err := runPipeline(c)
	if err != nil {
		return err
	}

	if err := encoding.WriteJSONFile(c.String("output"), out.Document); err != nil {
		return err
	}

	if c.Bool("summary-json") {
		data, err := json.MarshalIndent(out.Summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printSummary(os.Stderr, out.Summary)
	}
	return nil
}

func runDot(c *cli.Context) error {
	out, err := runPipeline(c)
	if err != nil {
		return err
	}

	doc := out.Document
	if file := c.String("file"); file != "" {
		doc = filterToFile(doc, file)
	}

	f, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	if err := encoding.WriteDOT(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSummary(os.Stderr, out.Summary)
	return nil
}

// filterToFile keeps function atoms of one file plus every atom reachable
// over their edges, so the rendered graph stays connected.
func filterToFile(doc *types.Document, file string) *types.Document {
	keep := make(map[string]struct{})
	for _, a := range doc.Atoms {
		if a.Kind == types.KindFunction && a.Path == file {
			keep[a.ID] = struct{}{}
		}
	}

	filtered := &types.Document{Atoms: []types.Atom{}, Dependencies: []types.DependencyEdge{}}
	for _, e := range doc.Dependencies {
		_, src := keep[e.SourceID]
		_, tgt := keep[e.TargetID]
		if src || tgt {
			filtered.Dependencies = append(filtered.Dependencies, e)
			keep[e.SourceID] = struct{}{}
			keep[e.TargetID] = struct{}{}
		}
	}
	for _, a := range doc.Atoms {
		if _, ok := keep[a.ID]; ok {
			filtered.Atoms = append(filtered.Atoms, a)
		}
	}
	return filtered
}

func printSummary(w *os.File, s types.RunSummary) {
	fmt.Fprintf(w, "atoms: %d (functions: %d), edges: %d\n",
		s.AtomCount, s.FunctionCount, s.EdgeCount)
	if len(s.DegradedFiles) > 0 {
		fmt.Fprintf(w, "degraded files (%d):\n", len(s.DegradedFiles))
		for _, f := range s.DegradedFiles {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if len(s.MissingFiles) > 0 {
		fmt.Fprintf(w, "missing files (%d):\n", len(s.MissingFiles))
		for _, f := range s.MissingFiles {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if len(s.DuplicateSymbols) > 0 {
		fmt.Fprintf(w, "duplicate definitions (%d):\n", len(s.DuplicateSymbols))
		for _, d := range s.DuplicateSymbols {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	if s.UnresolvedSymbols > 0 {
		fmt.Fprintf(w, "unresolved references: %d\n", s.UnresolvedSymbols)
	}
	if s.NotFoundSpans > 0 {
		fmt.Fprintf(w, "spans not found: %d\n", s.NotFoundSpans)
	}
}
