package identity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/adityakhanna/vouched/internal/namematch"
)

// submissionSchema is the shape contract for raw JSON submissions arriving
// from the transport layer. Field-level cleaning (phone digits, email
// lowercasing) still happens in namematch.ValidateSubmission; this only
// rejects structurally malformed payloads before decode.
var submissionSchema = map[string]any{
	"type":                 "object",
	"required":             []any{"name"},
	"additionalProperties": false,
	"properties": map[string]any{
		"name":          map[string]any{"type": "string", "minLength": 1},
		"phone":         map[string]any{"type": "string"},
		"email":         map[string]any{"type": "string"},
		"service_type":  map[string]any{"type": "string"},
		"business_name": map[string]any{"type": "string"},
		"address":       map[string]any{"type": "string"},
		"website":       map[string]any{"type": "string"},
		"metadata": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
	},
}

// DecodeSubmission validates raw JSON against the submission schema and
// decodes it.
func DecodeSubmission(data []byte) (namematch.Submission, error) {
	var sub namematch.Submission
	if err := validateJSONAgainstSchema(submissionSchema, data); err != nil {
		return sub, err
	}
	if err := json.Unmarshal(data, &sub); err != nil {
		return sub, fmt.Errorf("decode submission: %w", err)
	}
	return sub, nil
}

func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
