package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema used both to request structured output
// from the model and to validate what actually came back. Validation stays at
// this boundary so orchestration code never sees raw model text.
type Schema struct {
	Name       string
	Definition map[string]interface{}
	compiled   *gojsonschema.Schema
}

// MustSchema compiles a JSON schema definition and panics on error. Schemas
// are package-level constants, so a compile failure is a programming error.
func MustSchema(name, definition string) *Schema {
	var def map[string]interface{}
	if err := json.Unmarshal([]byte(definition), &def); err != nil {
		panic(fmt.Sprintf("schema %s: invalid definition: %v", name, err))
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definition))
	if err != nil {
		panic(fmt.Sprintf("schema %s: compile failed: %v", name, err))
	}
	return &Schema{Name: name, Definition: def, compiled: compiled}
}

// Validate checks a JSON document against the schema and returns a
// SchemaViolationError describing every failed constraint.
func (s *Schema) Validate(document []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &SchemaViolationError{Schema: s.Name, Detail: err.Error()}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &SchemaViolationError{Schema: s.Name, Detail: strings.Join(details, "; ")}
	}
	return nil
}
