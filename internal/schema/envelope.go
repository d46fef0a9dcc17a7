// Package schema compiles and applies the one fixed JSON Schema a graph
// envelope must satisfy: {"__graph": true, "version": <int>, "root": ...,
// "nodes": {...}}. It is used by the graph deserializer's optional
// strict mode, gating untrusted input before the shape-sniffing walk
// even starts.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchemaJSON is the fixed shape every graph envelope must
// satisfy. "nodes" intentionally allows arbitrary values: a node body
// can be a JSON object, an array, or a {"__type", "value"} record, and
// validating those further is the deserializer's job, not the
// envelope's.
const envelopeSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["__graph", "version", "root", "nodes"],
	"properties": {
		"__graph": {"const": true},
		"version": {"type": "integer", "minimum": 1},
		"root": true,
		"nodes": {"type": "object"}
	},
	"additionalProperties": false
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.LoadURL = blockRemoteRefs

		const url = "schema://envelope.json"
		if err := compiler.AddResource(url, strings.NewReader(envelopeSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("compile envelope schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(url)
	})
	return compiledSchema, compileErr
}

// blockRemoteRefs refuses every $ref the envelope schema's compiler
// tries to resolve. The envelope schema is fixed and self-contained, so
// any $ref it tried to chase would have to come from attacker-supplied
// input — never a case worth loading across the network.
func blockRemoteRefs(url string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("schema: remote $ref resolution is disabled (%s)", url)
}

// ValidateEnvelope reports whether decoded (an already json.Unmarshal'd
// value) satisfies the fixed graph envelope shape.
func ValidateEnvelope(decoded any) error {
	s, err := compiled()
	if err != nil {
		return err
	}

	// jsonschema validates against values produced by encoding/json's
	// decoder, which is exactly what decoded already is here — no
	// re-marshal/re-unmarshal round trip needed.
	if err := s.Validate(decoded); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("graph envelope does not match the required shape: %w", ve)
		}
		return err
	}
	return nil
}

// ValidateEnvelopeJSON parses text as JSON and validates it as a graph
// envelope, returning the decoded value on success.
func ValidateEnvelopeJSON(text string) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := ValidateEnvelope(decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
