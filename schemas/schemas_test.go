package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/jobfunnel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range schemas.Names() {
		t.Run(name, func(t *testing.T) {
			data, err := schemas.Read(name)
			require.NoError(t, err, "schema should be embedded")

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON")

			assert.Equal(t, "object", schemaObj["type"])
			assert.Contains(t, schemaObj, "$schema")
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestSchemas_CoverStructuredFields(t *testing.T) {
	fields := []string{
		"technical_stack",
		"key_responsibilities",
		"required_experience",
		"success_metrics",
		"salary_range",
		"salary_is_estimated",
	}

	for _, name := range schemas.Names() {
		data, err := schemas.Read(name)
		require.NoError(t, err)

		var schemaObj struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		require.NoError(t, json.Unmarshal(data, &schemaObj))
		for _, field := range fields {
			assert.Contains(t, schemaObj.Properties, field, "%s should declare %s", name, field)
		}
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := schemas.Read("nope.schema.json")
	assert.Error(t, err)
}
