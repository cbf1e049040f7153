// Package schema describes the editable properties of each workflow node type.
package schema

import (
	"slices"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Widget is the input control a property panel renders for a field.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetTextarea Widget = "textarea"
	WidgetNumber   Widget = "number"
	WidgetSelect   Widget = "select"
	WidgetUser     Widget = "user"  // Single approver picker
	WidgetUsers    Widget = "users" // Multi approver picker
	WidgetToggle   Widget = "toggle"
)

// Kind is the value type stored under a field key.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindInteger    Kind = "integer"
	KindBoolean    Kind = "boolean"
	KindStringList Kind = "string_list"
)

// Option is one choice of a select widget.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Condition makes a field visible only while another field holds one of the listed values.
type Condition struct {
	Field string   `json:"field"`
	OneOf []string `json:"one_of"`
}

// Matches evaluates the condition against effective property values.
func (c *Condition) Matches(props map[string]any) bool {
	value, _ := props[c.Field].(string)

	return slices.Contains(c.OneOf, value)
}

// Field describes one editable property.
type Field struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Widget      Widget     `json:"widget"`
	Kind        Kind       `json:"kind"`
	Default     any        `json:"default"`
	Options     []Option   `json:"options,omitempty"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	VisibleWhen *Condition `json:"visible_when,omitempty"`
}

// Visible reports whether the field is shown for the given effective properties.
func (f Field) Visible(props map[string]any) bool {
	if f.VisibleWhen == nil {
		return true
	}

	return f.VisibleWhen.Matches(props)
}

func (f Field) optionValues() []string {
	values := make([]string, 0, len(f.Options)+1)
	if f.Default == "" {
		values = append(values, "")
	}

	for _, o := range f.Options {
		values = append(values, o.Value)
	}

	return values
}

// universalFields are present on every node type, known or not.
func universalFields() []Field {
	return []Field{
		{Key: models.PropertyName, Label: "Name", Widget: WidgetText, Kind: KindString, Default: ""},
		{Key: models.PropertyDescription, Label: "Description", Widget: WidgetTextarea, Kind: KindString, Default: ""},
	}
}

func bound(v float64) *float64 {
	return &v
}
