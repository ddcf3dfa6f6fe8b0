package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"unicode/utf8"
)

// Validate checks args against s and returns the first violation found,
// qualified with the offending path
func Validate(args map[string]any, s *Schema) error {
	if s == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	return validateValue("", args, s)
}

func validateValue(path string, value any, s *Schema) error {
	if s == nil {
		return nil
	}
	if err := validateType(value, s.Type); err != nil {
		return pathError(path, err)
	}

	switch s.Type {
	case "object":
		obj := value.(map[string]any)
		for _, field := range s.Required {
			if _, ok := obj[field]; !ok {
				return fmt.Errorf("missing required field: %s", join(path, field))
			}
		}
		for key, v := range obj {
			prop, ok := s.Properties[key]
			if !ok {
				continue
			}
			if err := validateValue(join(path, key), v, prop); err != nil {
				return err
			}
		}
	case "array":
		arr := value.([]any)
		if s.MinItems != nil && len(arr) < *s.MinItems {
			return pathError(path, fmt.Errorf("expected at least %d items, got %d", *s.MinItems, len(arr)))
		}
		if s.MaxItems != nil && len(arr) > *s.MaxItems {
			return pathError(path, fmt.Errorf("expected at most %d items, got %d", *s.MaxItems, len(arr)))
		}
		for i, item := range arr {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), item, s.Items); err != nil {
				return err
			}
		}
	case "string":
		str := value.(string)
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return pathError(path, fmt.Errorf("value %q not in %v", str, s.Enum))
		}
		n := utf8.RuneCountInString(str)
		if s.MinLength != nil && n < *s.MinLength {
			return pathError(path, fmt.Errorf("shorter than %d characters", *s.MinLength))
		}
		if s.MaxLength != nil && n > *s.MaxLength {
			return pathError(path, fmt.Errorf("longer than %d characters", *s.MaxLength))
		}
	case "number", "integer":
		f, _ := toFloat(value)
		if s.Minimum != nil && f < *s.Minimum {
			return pathError(path, fmt.Errorf("%v is below minimum %v", f, *s.Minimum))
		}
		if s.Maximum != nil && f > *s.Maximum {
			return pathError(path, fmt.Errorf("%v is above maximum %v", f, *s.Maximum))
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "", "any":
		return nil
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if _, ok := toFloat(value); ok {
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
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
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

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathError(path string, err error) error {
	if path == "" {
		return err
	}
	return fmt.Errorf("field %s: %w", path, err)
}
