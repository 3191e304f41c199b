// file: internal/schema/validator.go
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpkit/server/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator compiles named JSON Schema documents and validates instances against
// them. Each name is independent: a tool's parameter schema, a prompt's argument schema,
// a resource's payload schema, all share the same compiler and cache.
type SchemaValidator struct {
	mu       sync.RWMutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
	logger   logging.Logger
}

// NewSchemaValidator creates an empty SchemaValidator ready to accept Compile calls.
func NewSchemaValidator(logger logging.Logger) *SchemaValidator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	return &SchemaValidator{
		compiler: compiler,
		schemas:  make(map[string]*jsonschema.Schema),
		logger:   logger.WithField("component", "schema_validator"),
	}
}

// Compile parses and compiles schema under name, making it available to Validate and
// HasSchema. Recompiling an existing name replaces it.
func (v *SchemaValidator) Compile(name string, schemaBytes []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var doc interface{}
	if err := json.Unmarshal(schemaBytes, &doc); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, fmt.Sprintf("schema '%s' is not valid JSON", name), errors.Wrap(err, "json.Unmarshal"))
	}

	resourceID := "mcpkit://schema/" + name
	if err := v.compiler.AddResource(resourceID, bytesReader(schemaBytes)); err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("failed to add schema resource for '%s'", name), errors.Wrap(err, "compiler.AddResource"))
	}

	compiled, err := v.compiler.Compile(resourceID)
	if err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("failed to compile schema '%s'", name), errors.Wrap(err, "compiler.Compile"))
	}

	v.schemas[name] = compiled
	v.logger.Debug("compiled schema", "name", name)
	return nil
}

// HasSchema reports whether name has a compiled schema.
func (v *SchemaValidator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// IsInitialized reports whether at least one schema has been compiled.
func (v *SchemaValidator) IsInitialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.schemas) > 0
}

// Validate checks data against the schema compiled under name.
func (v *SchemaValidator) Validate(_ context.Context, name string, data []byte) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return NewValidationError(ErrSchemaNotFound, fmt.Sprintf("no schema compiled for '%s'", name), nil)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "invalid JSON format", errors.Wrap(err, "json.Unmarshal")).WithContext("schemaName", name)
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			return convertValidationError(valErr, name)
		}
		return NewValidationError(ErrValidationFailed, "schema validation failed unexpectedly", errors.Wrap(err, "schema.Validate")).WithContext("schemaName", name)
	}
	return nil
}
