package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Schema names embedded in this package
const (
	RuleCatalogSchema      = "rule-catalog.json"
	HeuristicsSchema       = "heuristics.json"
	SeedCatalogSchema      = "seed-catalog.json"
	ProjectConfigSchema    = "project-config.json"
	AdvisoryResponseSchema = "advisory-response.json"
)

//go:embed *.json
var schemaFS embed.FS

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// ValidationError represents a schema validation error
type ValidationError struct {
	Errors []string
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// loadSchema compiles an embedded schema once and caches it
func loadSchema(schemaName string) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[schemaName]; ok {
		return schema, nil
	}

	schemaData, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	schema, err := jsonschema.CompileString(schemaName, string(schemaData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", schemaName, err)
	}

	compiled[schemaName] = schema
	return schema, nil
}

// ValidateJSON validates a data structure against an embedded JSON schema
// schemaName should be the filename of the schema (e.g., "rule-catalog.json")
// data should be the parsed YAML/JSON data as interface{}
func ValidateJSON(schemaName string, data interface{}) error {
	schema, err := loadSchema(schemaName)
	if err != nil {
		return err
	}

	err = schema.Validate(data)
	if err != nil {
		var validationErrors []string
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			for _, e := range validationErr.BasicOutput().Errors {
				if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
					continue
				}
				msg := e.Error
				if e.InstanceLocation != "" {
					msg = fmt.Sprintf("%s: %s", e.InstanceLocation, e.Error)
				}
				validationErrors = append(validationErrors, msg)
			}
			// Add the main error message if there are no causes
			if len(validationErrors) == 0 {
				validationErrors = append(validationErrors, validationErr.Message)
			}
		} else {
			validationErrors = append(validationErrors, err.Error())
		}
		return ValidationError{Errors: validationErrors}
	}

	return nil
}

// ValidateYAML validates YAML content against an embedded JSON schema
func ValidateYAML(schemaName string, yamlContent []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(yamlContent, &data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	return ValidateJSON(schemaName, data)
}

// ValidateJSONBytes validates raw JSON content against an embedded JSON schema
func ValidateJSONBytes(schemaName string, jsonContent []byte) error {
	var data interface{}
	if err := json.Unmarshal(jsonContent, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return ValidateJSON(schemaName, data)
}

// ValidateStruct validates a Go struct against an embedded JSON schema
// The struct is round-tripped through YAML so its yaml tags define the field names
func ValidateStruct(schemaName string, structData interface{}) error {
	yamlContent, err := yaml.Marshal(structData)
	if err != nil {
		return fmt.Errorf("failed to marshal struct: %w", err)
	}

	return ValidateYAML(schemaName, yamlContent)
}

// ListAvailableSchemas returns a list of available schema filenames
func ListAvailableSchemas() ([]string, error) {
	entries, err := schemaFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	var schemas []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			schemas = append(schemas, entry.Name())
		}
	}

	return schemas, nil
}
