package brainstorm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// suggestionSchema mirrors the response schema given to the model. The model
// output is external input and is re-checked before it is trusted.
const suggestionSchema = `{
	"type": "object",
	"required": ["ideas"],
	"properties": {
		"ideas": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "concept"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"concept": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

var compiledSuggestionSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(suggestionSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid suggestion schema: %v", err))
	}
	compiledSuggestionSchema = schema
}

// validateSuggestionPayload validates the raw model output against the
// suggestion schema.
func validateSuggestionPayload(raw string) error {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("failed to parse suggestion payload: %w", err)
	}

	result := compiledSuggestionSchema.Validate(payload)
	if !result.IsValid() {
		var errorMessages []string
		for field, evalErr := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		return fmt.Errorf("suggestion validation failed: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
