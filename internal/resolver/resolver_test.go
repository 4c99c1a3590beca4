package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/atomizer/internal/scip"
)

const (
	symHelper = "rust-analyzer cargo demo 0.1.0 lib/helper()."
	symCaller = "rust-analyzer cargo demo 0.1.0 lib/caller()."
	symStdFmt = "rust-analyzer cargo std 1.76.0 fmt/format()."
	symGhost  = "rust-analyzer cargo demo 0.1.0 lib/ghost()."
)

func fnSym(symbol, name string) scip.SymbolInformation {
	return scip.SymbolInformation{Symbol: symbol, Kind: scip.SymbolKindFunction, DisplayName: name}
}

func defOcc(line int, symbol string) scip.Occurrence {
	return scip.Occurrence{Range: []int{line, 3, 9}, Symbol: symbol, SymbolRoles: scip.RoleDefinition}
}

func refOcc(line int, symbol string) scip.Occurrence {
	return scip.Occurrence{Range: []int{line, 8, 14}, Symbol: symbol}
}

func TestCleanIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		display  string
		expected string
	}{
		{
			name:     "plain function",
			symbol:   symHelper,
			display:  "helper",
			expected: "lib/helper",
		},
		{
			name:     "method on type",
			symbol:   "rust-analyzer cargo demo 0.1.0 lib/Foo#helper().",
			display:  "helper",
			expected: "lib/Foo/helper",
		},
		{
			name:     "hyphenated crate",
			symbol:   "rust-analyzer cargo my-crate 0.1.0 lib/run().",
			display:  "run",
			expected: "lib/run",
		},
		{
			name:     "generics dropped",
			symbol:   "rust-analyzer cargo demo 0.1.0 lib/Vec<T>#push().",
			display:  "push",
			expected: "lib/Vec/push",
		},
		{
			name:     "display name appended when missing",
			symbol:   "rust-analyzer cargo demo 0.1.0 lib/impl#].",
			display:  "new",
			expected: "lib/impl/new",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanIdentifier(tt.symbol, tt.display))
		})
	}
}

func TestCleanIdentifierCapsLength(t *testing.T) {
	long := "rust-analyzer cargo demo 0.1.0 " + strings.Repeat("very/", 60) + "deep()."
	got := CleanIdentifier(long, "deep")
	assert.LessOrEqual(t, len([]rune(got)), 128)
}

func TestSymbolCrate(t *testing.T) {
	assert.Equal(t, "demo", SymbolCrate(symHelper))
	assert.Equal(t, "std", SymbolCrate(symStdFmt))
	assert.Equal(t, "", SymbolCrate("local 12"))
}

func twoFunctionIndex() *scip.Index {
	return &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Symbols: []scip.SymbolInformation{
					fnSym(symCaller, "caller"),
					fnSym(symHelper, "helper"),
				},
				Occurrences: []scip.Occurrence{
					defOcc(1, symCaller),
					refOcc(2, symHelper), // caller's body calls helper
					defOcc(5, symHelper),
				},
			},
		},
	}
}

func TestResolveDefinitions(t *testing.T) {
	res := Resolve(twoFunctionIndex(), "demo")
	require.Len(t, res.Functions, 2)

	// Ordered by (file, start line).
	assert.Equal(t, "lib/caller", res.Functions[0].Identifier)
	assert.Equal(t, "lib/helper", res.Functions[1].Identifier)
	assert.Equal(t, "src/lib.rs", res.Functions[0].RelPath)
	assert.Equal(t, 1, res.Functions[0].StartLine)
	assert.Empty(t, res.Duplicates)
}

func TestResolvePositionalAttribution(t *testing.T) {
	res := Resolve(twoFunctionIndex(), "demo")
	require.Len(t, res.Calls, 1)

	call := res.Calls[0]
	assert.Equal(t, "lib/caller", call.Caller.Identifier)
	assert.Equal(t, symHelper, call.CalleeSymbol)
	assert.Equal(t, TargetLocal, call.Class)
}

func TestResolveEnclosingSymbolWins(t *testing.T) {
	// The local binding's enclosure chain leads to helper even though the
	// nearest anchor above the reference is caller.
	local := "local 7"
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Symbols: []scip.SymbolInformation{
					fnSym(symCaller, "caller"),
					fnSym(symHelper, "helper"),
					{Symbol: local, Kind: scip.SymbolKindFunction, DisplayName: "closure", EnclosingSymbol: symHelper},
				},
				Occurrences: []scip.Occurrence{
					defOcc(1, symCaller),
					defOcc(5, symHelper),
					refOcc(8, local),
				},
			},
		},
	}
	res := Resolve(idx, "demo")
	require.Len(t, res.Calls, 1)
	assert.Equal(t, "lib/helper", res.Calls[0].Caller.Identifier)
}

func TestResolveSelfCallSkipped(t *testing.T) {
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Symbols:      []scip.SymbolInformation{fnSym(symHelper, "helper")},
				Occurrences: []scip.Occurrence{
					defOcc(1, symHelper),
					refOcc(3, symHelper), // recursion
				},
			},
		},
	}
	res := Resolve(idx, "demo")
	assert.Empty(t, res.Calls)
}

func TestResolveClassification(t *testing.T) {
	idx := twoFunctionIndex()
	idx.Documents[0].Occurrences = append(idx.Documents[0].Occurrences,
		refOcc(2, symStdFmt), // other crate, no local definition
		refOcc(3, symGhost),  // same crate, no local definition
	)
	res := Resolve(idx, "demo")
	require.Len(t, res.Calls, 3)

	classes := make(map[string]TargetClass)
	for _, c := range res.Calls {
		classes[c.CalleeSymbol] = c.Class
	}
	assert.Equal(t, TargetLocal, classes[symHelper])
	assert.Equal(t, TargetExternal, classes[symStdFmt])
	assert.Equal(t, TargetUnresolved, classes[symGhost])
	assert.Equal(t, 1, res.UnresolvedCount)
}

func TestResolveUnknownCrateDefaultsExternal(t *testing.T) {
	idx := twoFunctionIndex()
	idx.Documents[0].Occurrences = append(idx.Documents[0].Occurrences, refOcc(2, symGhost))
	res := Resolve(idx, "")

	classes := make(map[string]TargetClass)
	for _, c := range res.Calls {
		classes[c.CalleeSymbol] = c.Class
	}
	assert.Equal(t, TargetExternal, classes[symGhost])
	assert.Zero(t, res.UnresolvedCount)
}

func TestResolveDuplicateDefinitionFirstWins(t *testing.T) {
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/a.rs",
				Symbols:      []scip.SymbolInformation{fnSym(symHelper, "helper")},
				Occurrences:  []scip.Occurrence{defOcc(2, symHelper)},
			},
			{
				RelativePath: "src/b.rs",
				Symbols:      []scip.SymbolInformation{fnSym(symHelper, "helper")},
				Occurrences:  []scip.Occurrence{defOcc(9, symHelper)},
			},
		},
	}
	res := Resolve(idx, "demo")
	require.Len(t, res.Functions, 1)
	assert.Equal(t, "src/a.rs", res.Functions[0].RelPath)

	require.Len(t, res.Duplicates, 1)
	assert.Contains(t, res.Duplicates[0], "src/a.rs:3")
	assert.Contains(t, res.Duplicates[0], "src/b.rs:10")
}

func TestResolveOccurrenceOnlyCallable(t *testing.T) {
	// No symbol table entry at all; the "()." descriptor suffix still
	// marks the symbol as a callable definition.
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Occurrences:  []scip.Occurrence{defOcc(4, symHelper)},
			},
		},
	}
	res := Resolve(idx, "demo")
	require.Len(t, res.Functions, 1)
	assert.Equal(t, "helper", res.Functions[0].DisplayName)
}

func TestResolveNonFunctionKindIgnored(t *testing.T) {
	structSym := "rust-analyzer cargo demo 0.1.0 lib/Config#"
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Symbols:      []scip.SymbolInformation{{Symbol: structSym, Kind: 49, DisplayName: "Config"}},
				Occurrences:  []scip.Occurrence{defOcc(1, structSym)},
			},
		},
	}
	res := Resolve(idx, "demo")
	assert.Empty(t, res.Functions)
}

func TestResolveReferenceBeforeAnyDefinition(t *testing.T) {
	// A reference above every definition anchor has no caller; no edge.
	idx := &scip.Index{
		Documents: []scip.Document{
			{
				RelativePath: "src/lib.rs",
				Symbols:      []scip.SymbolInformation{fnSym(symHelper, "helper")},
				Occurrences: []scip.Occurrence{
					refOcc(0, symHelper),
					defOcc(5, symHelper),
				},
			},
		},
	}
	res := Resolve(idx, "demo")
	assert.Empty(t, res.Calls)
}
