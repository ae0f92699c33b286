package tool

import (
	"encoding/json"
	"fmt"
	"math"
)

// Validator validates tool arguments before execution.
type Validator interface {
	Validate(args map[string]any, schema map[string]any) error
}

// DefaultValidator implements a minimal JSON Schema check covering required
// fields and primitive type matches. Anything deeper is left to the tool.
type DefaultValidator struct{}

// Validate ensures that args satisfy the provided schema.
func (DefaultValidator) Validate(args map[string]any, schema map[string]any) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	if required, ok := schema["required"].([]any); ok {
		for _, field := range required {
			name, ok := field.(string)
			if !ok {
				continue
			}
			if _, exists := args[name]; !exists {
				return fmt.Errorf("missing required field: %s", name)
			}
		}
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok || len(properties) == 0 {
		return nil
	}

	for key, value := range args {
		propDef, ok := properties[key].(map[string]any)
		if !ok {
			continue
		}
		expected, ok := propDef["type"].(string)
		if !ok || expected == "" {
			continue
		}
		if err := validateType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}

	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "integer":
		if isInteger(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if value == nil {
			break
		}
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	case "null":
		if value == nil {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
