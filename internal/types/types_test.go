package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomKindString(t *testing.T) {
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "function", KindFunction.String())
	assert.Equal(t, "external", KindExternal.String())
	assert.Equal(t, "unknown", AtomKind(200).String())
}

func TestConfidenceString(t *testing.T) {
	assert.Equal(t, "exact", ConfidenceExact.String())
	assert.Equal(t, "approximate-fallback", ConfidenceApproximate.String())
	assert.Equal(t, "not-found", ConfidenceNotFound.String())
}

func TestAtomJSONShape(t *testing.T) {
	atom := Atom{
		ID:         "crate/lib/helper:10",
		Kind:       KindFunction,
		Name:       "helper",
		Path:       "src/lib.rs",
		ParentID:   "src/lib.rs",
		StartLine:  10,
		EndLine:    14,
		SourceText: "fn helper() {}",
		Confidence: ConfidenceExact,
	}
	data, err := json.Marshal(atom)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "function", decoded["kind"])
	assert.Equal(t, "exact", decoded["confidence"])
	assert.Equal(t, float64(10), decoded["start_line"])
}

func TestAtomJSONOmitsEmptyOptionalFields(t *testing.T) {
	atom := Atom{ID: "src", Kind: KindFolder, Name: "src", Path: "src"}
	data, err := json.Marshal(atom)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "parent_id")
	assert.NotContains(t, string(data), "source_text")
}

func TestEdgeKindJSON(t *testing.T) {
	edge := DependencyEdge{SourceID: "a", TargetID: "b", Kind: EdgeCalls, Weight: 3}
	data, err := json.Marshal(edge)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_id":"a","target_id":"b","kind":"calls","weight":3}`, string(data))
}

func TestComputeLineOffsets(t *testing.T) {
	content := []byte("fn a() {}\nfn b() {\n}\n")
	offsets := ComputeLineOffsets(content)
	assert.Equal(t, []int{0, 10, 19, 21}, offsets)

	assert.Equal(t, 0, LineFromOffset(offsets, 0))
	assert.Equal(t, 0, LineFromOffset(offsets, 9))
	assert.Equal(t, 1, LineFromOffset(offsets, 10))
	assert.Equal(t, 2, LineFromOffset(offsets, 19))

	assert.Equal(t, 10, LineStartOffset(offsets, 1))
	assert.Equal(t, 0, LineStartOffset(offsets, -1))
	assert.Equal(t, 21, LineStartOffset(offsets, 99))
}

func TestRunSummarySort(t *testing.T) {
	s := RunSummary{
		DegradedFiles:    []string{"b.rs", "a.rs"},
		DuplicateSymbols: []string{"z", "a"},
	}
	s.Sort()
	assert.Equal(t, []string{"a.rs", "b.rs"}, s.DegradedFiles)
	assert.Equal(t, []string{"a", "z"}, s.DuplicateSymbols)
}
