// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateDocument checks a decoded document against a JSON schema given as
// a generic map. Returns nil when the document conforms.
func ValidateDocument(schema map[string]interface{}, document interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return resultErr(result)
}

// ValidateJSON checks raw JSON text against a schema without requiring the
// caller to decode it first.
func ValidateJSON(schema map[string]interface{}, raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return resultErr(result)
}

// CompileSchema verifies that a schema itself is loadable, for registry
// maintenance tooling.
func CompileSchema(schema map[string]interface{}) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("schema compile failed: %w", err)
	}
	return nil
}

func resultErr(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("document validation failed: %v", errs)
}
