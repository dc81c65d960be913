package prefs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// snapshotSchema constrains the shape of a decoded snapshot payload. Value
// envelopes are checked structurally here; kind-specific field checks happen
// when the value package decodes them.
const snapshotSchema = `{
  "type": "object",
  "required": ["id", "created_at", "namespaces"],
  "properties": {
    "id": {"type": "string"},
    "created_at": {"type": "string"},
    "namespaces": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": {
          "type": "object",
          "required": ["kind"],
          "properties": {
            "kind": {"type": "string"}
          }
        }
      }
    }
  }
}`

// Validator validates snapshot payloads against the embedded JSON Schema.
// The schema is compiled once, on first use.
type Validator struct {
	once       sync.Once
	schema     *jsonschema.Schema
	compileErr error
}

// NewValidator creates a new snapshot validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a raw snapshot payload against the schema.
func (v *Validator) Validate(raw []byte) error {
	v.once.Do(func() {
		v.schema, v.compileErr = compileSnapshotSchema()
	})
	if v.compileErr != nil {
		return fmt.Errorf("prefs: compile snapshot schema: %w", v.compileErr)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("prefs: decode snapshot payload: %w", err)
	}
	return v.schema.Validate(doc)
}

func compileSnapshotSchema() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(snapshotSchema), &doc); err != nil {
		return nil, err
	}

	const url = "pulse://schema/snapshot"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}
