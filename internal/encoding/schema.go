package encoding

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// DocumentSchema describes the output contract. The shape is stable;
// consumers may rely on every listed field, and additions must stay
// backward compatible.
func DocumentSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"atoms", "dependencies"},
		Properties: map[string]*jsonschema.Schema{
			"atoms": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"id", "kind", "name", "path", "start_line", "end_line", "confidence"},
					Properties: map[string]*jsonschema.Schema{
						"id":   {Type: "string"},
						"kind": {Type: "string", Enum: []any{"folder", "file", "function", "external"}},
						"name": {Type: "string"},
						"path": {Type: "string"},
						"parent_id": {
							Type:        "string",
							Description: "Absent on forest roots and the external atom",
						},
						"start_line": {Type: "integer"},
						"end_line":   {Type: "integer"},
						"source_text": {
							Type:        "string",
							Description: "Extracted source; absent when the span was not found",
						},
						"confidence": {
							Type: "string",
							Enum: []any{"exact", "approximate-fallback", "not-found"},
						},
					},
				},
			},
			"dependencies": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"source_id", "target_id", "kind", "weight"},
					Properties: map[string]*jsonschema.Schema{
						"source_id": {Type: "string"},
						"target_id": {Type: "string"},
						"kind": {
							Type: "string",
							Enum: []any{"calls", "references-external"},
						},
						"weight": {Type: "integer"},
					},
				},
			},
		},
	}
}
