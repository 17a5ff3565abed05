package blueprint

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/blueprint.schema.json
var schemaSource string

const schemaURL = "blueprint.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Decode validates an untyped JSON value (as produced by json.Unmarshal into
// any) against the blueprint schema and converts it into a typed Blueprint.
// Any violation is reported as ErrInvalid.
func Decode(v any) (*Blueprint, error) {
	schema, err := loadCompiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile blueprint schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: schema validation failed: %v", ErrInvalid, err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var bp Blueprint
	if err := json.Unmarshal(raw, &bp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	bp.Normalize()
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// ToValue converts a typed blueprint into the untyped form Decode accepts.
func ToValue(b Blueprint) (any, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
