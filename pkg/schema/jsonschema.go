package schema

// JSONSchema is the JSON Schema document generated for a node type's property bag.
type JSONSchema struct {
	Schema               string               `json:"$schema,omitempty"`
	Type                 string               `json:"type"`
	Title                string               `json:"title,omitempty"`
	Properties           map[string]*Property `json:"properties"`
	AdditionalProperties bool                 `json:"additionalProperties"`
}

// Property represents a JSON Schema property.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []any     `json:"enum,omitempty"`
	Default     any       `json:"default,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

func buildJSONSchema(title string, fields []Field) *JSONSchema {
	doc := &JSONSchema{
		Schema:               "http://json-schema.org/draft-07/schema#",
		Type:                 "object",
		Title:                title,
		Properties:           make(map[string]*Property, len(fields)),
		AdditionalProperties: false,
	}

	for _, f := range fields {
		doc.Properties[f.Key] = fieldProperty(f)
	}

	return doc
}

func fieldProperty(f Field) *Property {
	prop := &Property{
		Description: f.Label,
		Default:     f.Default,
		Minimum:     f.Min,
		Maximum:     f.Max,
	}

	switch f.Kind {
	case KindNumber:
		prop.Type = "number"
	case KindInteger:
		prop.Type = "integer"
	case KindBoolean:
		prop.Type = "boolean"
	case KindStringList:
		prop.Type = "array"
		prop.Items = &Property{Type: "string"}
	default:
		prop.Type = "string"
	}

	if f.Widget == WidgetSelect && len(f.Options) > 0 {
		for _, v := range f.optionValues() {
			prop.Enum = append(prop.Enum, v)
		}
	}

	return prop
}
