package tool

// Schema is the JSON-schema subset tools declare for their parameters
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	MinItems    *int               `json:"minItems,omitempty"`
	MaxItems    *int               `json:"maxItems,omitempty"`
	MinLength   *int               `json:"minLength,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// Definition describes one tool as offered to the model
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters"`
}

// Object builds an object schema with the given properties and required keys
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

// String builds a string schema
func String(desc string) *Schema {
	return &Schema{Type: "string", Description: desc}
}

// Enum builds a string schema restricted to values
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: "string", Description: desc, Enum: values}
}

// Integer builds an integer schema bounded by [min, max]
func Integer(desc string, min, max float64) *Schema {
	return &Schema{Type: "integer", Description: desc, Minimum: &min, Maximum: &max}
}

// Number builds a number schema
func Number(desc string) *Schema {
	return &Schema{Type: "number", Description: desc}
}

// Array builds an array schema holding between min and max items
func Array(desc string, items *Schema, min, max int) *Schema {
	s := &Schema{Type: "array", Description: desc, Items: items}
	if min > 0 {
		s.MinItems = &min
	}
	if max > 0 {
		s.MaxItems = &max
	}
	return s
}
