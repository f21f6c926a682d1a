package formats

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/arthur-debert/nanoquery/types"
)

// DatasetSchema is the JSON Schema every decoded dataset document must
// satisfy: an object whose values are arrays of objects.
const DatasetSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {"type": "object"}
	}
}`

var (
	datasetSchemaOnce sync.Once
	datasetSchema     *gojsonschema.Schema
	datasetSchemaErr  error
)

func compiledDatasetSchema() (*gojsonschema.Schema, error) {
	datasetSchemaOnce.Do(func() {
		datasetSchema, datasetSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(DatasetSchema))
	})
	return datasetSchema, datasetSchemaErr
}

// ValidateShape checks a decoded document against DatasetSchema
func ValidateShape(v types.Value) error {
	schema, err := compiledDatasetSchema()
	if err != nil {
		return fmt.Errorf("dataset schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(v.Interface()))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("document is not a dataset: %s", strings.Join(errs, "; "))
	}

	return nil
}
