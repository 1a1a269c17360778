// Package schemas validates classifier JSON output against the embedded JSON
// Schemas in the top-level schemas package.
package schemas

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/jobfunnel/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownSchema is returned for a name that is not embedded.
var ErrUnknownSchema = errors.New("unknown schema")

// FieldError is one violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation of one document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation against %s failed:\n", ve.Schema)
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// compileAll compiles every embedded schema once. A broken schema file fails
// every later Validate call.
var compileAll = sync.OnceValues(func() (map[string]*gojsonschema.Schema, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(schemafiles.Names()))
	for _, name := range schemafiles.Names() {
		raw, err := schemafiles.Read(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		compiled[name] = schema
	}
	return compiled, nil
})

// Validate checks a JSON document against the named schema (schemafiles.Extraction
// or schemafiles.ManualExtraction). Violations come back as *ValidationError; a
// document that is not JSON at all gets a plain error.
func Validate(name, document string) error {
	compiled, err := compileAll()
	if err != nil {
		return err
	}
	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("failed to parse JSON document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
