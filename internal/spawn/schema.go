package spawn

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const spawnPropertiesSchema = `{
	"type": "object",
	"required": ["category"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"category": {"type": "string", "enum": ["coin", "monster"]},
		"subtype": {"type": "string"},
		"reward_value": {"type": "number", "minimum": 0}
	}
}`

const catalogDocumentSchema = `{
	"type": "object",
	"required": ["spawns"],
	"properties": {
		"spawns": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "lat", "lng", "category"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"lat": {"type": "number", "minimum": -90, "maximum": 90},
					"lng": {"type": "number", "minimum": -180, "maximum": 180},
					"category": {"type": "string", "enum": ["coin", "monster"]},
					"subtype": {"type": "string"},
					"reward_value": {"type": "number", "minimum": 0}
				}
			}
		}
	}
}`

var (
	propertiesSchemaLoader = gojsonschema.NewStringLoader(spawnPropertiesSchema)
	documentSchemaLoader   = gojsonschema.NewStringLoader(catalogDocumentSchema)
)

func validateProperties(props map[string]interface{}) error {
	return validate(propertiesSchemaLoader, props)
}

func validateDocument(doc map[string]interface{}) error {
	return validate(documentSchemaLoader, doc)
}

func validate(schema gojsonschema.JSONLoader, data interface{}) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("catalog validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
