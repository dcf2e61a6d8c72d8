package validation

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

const WardrobeImportSchema = "wardrobe-import"

//go:embed schemas/*.json
var embeddedSchemas embed.FS

// SchemaValidator validates JSON documents against named schemas.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// NewDefaultSchemaValidator loads the schemas compiled into the binary.
func NewDefaultSchemaValidator() (*SchemaValidator, error) {
	sv := NewSchemaValidator()
	if err := sv.LoadSchemaFromFS(embeddedSchemas, "schemas"); err != nil {
		return nil, err
	}
	return sv, nil
}

// LoadSchemaFromFS loads every *.json file in dir, named after the file without its extension.
func (sv *SchemaValidator) LoadSchemaFromFS(fsys fs.FS, dir string) error {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	for _, schemaPath := range matches {
		schemaBytes, err := fs.ReadFile(fsys, schemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if err != nil {
			return fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
		}

		name := path.Base(schemaPath)
		sv.schemas[name[:len(name)-len(path.Ext(name))]] = schema
	}

	return nil
}

// ValidateImportDocument validates a raw wardrobe export document.
func (sv *SchemaValidator) ValidateImportDocument(data []byte) *ValidationResult {
	return sv.validate(WardrobeImportSchema, data)
}

func (sv *SchemaValidator) validate(schemaName string, doc []byte) *ValidationResult {
	schema, ok := sv.schemas[schemaName]
	if !ok {
		return invalid(ValidationError{Field: "schema", Message: "unknown schema " + schemaName, Code: "SCHEMA_NOT_FOUND"})
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// malformed JSON lands here
		return invalid(ValidationError{Field: "document", Message: err.Error(), Code: "MALFORMED_DOCUMENT"})
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    "VALIDATION_ERROR",
			Value:   re.Value(),
		})
	}
	return out
}

func invalid(errs ...ValidationError) *ValidationResult {
	return &ValidationResult{Errors: errs}
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// Err folds an invalid result into a single error, or returns nil.
func (vr *ValidationResult) Err() error {
	if vr.Valid {
		return nil
	}
	if len(vr.Errors) == 0 {
		return fmt.Errorf("document failed validation")
	}
	return fmt.Errorf("document failed validation (%d errors): %w", len(vr.Errors), vr.Errors[0])
}

// ToAPIError converts validation errors to the API error envelope.
func (vr *ValidationResult) ToAPIError() map[string]interface{} {
	if vr.Valid {
		return nil
	}

	fieldErrors := make(map[string][]string)
	for _, err := range vr.Errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}

	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "VALIDATION_ERROR",
			"message": "Request validation failed",
			"details": map[string]interface{}{
				"validationErrors": vr.Errors,
				"fieldErrors":      fieldErrors,
			},
		},
	}
}

func (sv *SchemaValidator) GetAvailableSchemas() []string {
	schemas := make([]string, 0, len(sv.schemas))
	for name := range sv.schemas {
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)
	return schemas
}
