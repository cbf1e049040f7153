package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidProperty is wrapped by every property validation failure.
var ErrInvalidProperty = errors.New("invalid property value")

// ValidationError lists the problems found in a property write.
type ValidationError struct {
	NodeType models.NodeType
	Issues   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s properties: %s", e.NodeType, strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidProperty
}

// Registry maps node types to their property fields. It is immutable after construction.
type Registry struct {
	fields  map[models.NodeType][]Field
	schemas map[models.NodeType]*gojsonschema.Schema
	docs    map[models.NodeType]*JSONSchema
	generic *gojsonschema.Schema
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	contractTypes []directory.ContractType
}

// WithContractTypes sets the taxonomy offered by decision nodes.
func WithContractTypes(types []directory.ContractType) RegistryOption {
	return func(o *registryOptions) {
		o.contractTypes = types
	}
}

// NewRegistry builds the registry of built-in node types.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	options := &registryOptions{contractTypes: directory.DefaultContractTypes()}
	for _, opt := range opts {
		opt(options)
	}

	contractTypes := make([]Option, 0, len(options.contractTypes))
	for _, ct := range options.contractTypes {
		contractTypes = append(contractTypes, Option{Value: ct.ID, Label: ct.Label})
	}

	r := &Registry{
		fields:  make(map[models.NodeType][]Field),
		schemas: make(map[models.NodeType]*gojsonschema.Schema),
		docs:    make(map[models.NodeType]*JSONSchema),
	}

	for nodeType, fields := range builtinFields(contractTypes) {
		all := append(universalFields(), fields...)
		r.fields[nodeType] = all

		doc := buildJSONSchema(string(nodeType), all)

		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", nodeType, err)
		}

		r.docs[nodeType] = doc
		r.schemas[nodeType] = compiled
	}

	generic, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(buildJSONSchema("generic", universalFields())))
	if err != nil {
		return nil, fmt.Errorf("failed to compile generic schema: %w", err)
	}

	r.generic = generic

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}

	return r
}

// Has reports whether the node type has a registered schema.
func (r *Registry) Has(nodeType models.NodeType) bool {
	_, ok := r.fields[nodeType]

	return ok
}

// Types returns the registered node types in palette order.
func (r *Registry) Types() []models.NodeType {
	types := make([]models.NodeType, 0, len(r.fields))

	for _, t := range models.NodeTypes() {
		if r.Has(t) {
			types = append(types, t)
		}
	}

	return types
}

// FieldsFor returns the ordered fields of a node type. Unknown types get only name and description.
func (r *Registry) FieldsFor(nodeType models.NodeType) []Field {
	fields, ok := r.fields[nodeType]
	if !ok {
		return universalFields()
	}

	return slices.Clone(fields)
}

// Defaults returns the documented default of every stored property. The name is excluded
// because it is kept as the node label.
func (r *Registry) Defaults(nodeType models.NodeType) map[string]any {
	defaults := make(map[string]any)

	for _, f := range r.FieldsFor(nodeType) {
		if f.Key == models.PropertyName {
			continue
		}

		switch v := f.Default.(type) {
		case []string:
			defaults[f.Key] = slices.Clone(v)
		default:
			defaults[f.Key] = v
		}
	}

	return defaults
}

// Effective overlays props on the type's defaults.
func (r *Registry) Effective(nodeType models.NodeType, props map[string]any) map[string]any {
	effective := r.Defaults(nodeType)
	maps.Copy(effective, props)

	return effective
}

// VisibleFields returns the fields a property panel shows for the given properties.
func (r *Registry) VisibleFields(nodeType models.NodeType, props map[string]any) []Field {
	effective := r.Effective(nodeType, props)

	visible := make([]Field, 0)

	for _, f := range r.FieldsFor(nodeType) {
		if f.Visible(effective) {
			visible = append(visible, f)
		}
	}

	return visible
}

// JSONSchema returns the JSON Schema document of a node type.
func (r *Registry) JSONSchema(nodeType models.NodeType) *JSONSchema {
	doc, ok := r.docs[nodeType]
	if !ok {
		return buildJSONSchema("generic", universalFields())
	}

	return doc
}

// Validate checks that every key in props is legal for the node type and that its value
// has the right type and lies within the allowed enum or range.
func (r *Registry) Validate(nodeType models.NodeType, props map[string]any) error {
	compiled, ok := r.schemas[nodeType]
	if !ok {
		compiled = r.generic
	}

	if props == nil {
		props = map[string]any{}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(props))
	if err != nil {
		return &ValidationError{NodeType: nodeType, Issues: []string{err.Error()}}
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}

	slices.Sort(issues)

	return &ValidationError{NodeType: nodeType, Issues: issues}
}
