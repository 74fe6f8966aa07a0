package pricing

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// mappingEntrySchema is the static shape every oracle mapping entry must
// satisfy before the dynamic bounds checks run. Kept as data so the
// contract reads like the prompt that produced it.
var mappingEntrySchema = map[string]any{
	"type":     "object",
	"required": []any{"item_index", "price_list_index"},
	"properties": map[string]any{
		"item_index": map[string]any{
			"type":    "integer",
			"minimum": 0,
		},
		"price_list_index": map[string]any{
			"type":    "integer",
			"minimum": 0,
		},
		"match_reason": map[string]any{
			"type": "string",
		},
	},
}

var compiledEntrySchema = mustCompileSchema(mappingEntrySchema)

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("mapping-entry.json", bytes.NewReader(b)); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile("mapping-entry.json")
	if err != nil {
		panic(err)
	}
	return schema
}

// validEntry validates one raw oracle entry against the schema. Invalid
// entries are dropped by the caller, never repaired.
func validEntry(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return compiledEntrySchema.Validate(v) == nil
}
