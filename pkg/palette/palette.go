// Package palette supplies the node types and templates used to build workflows.
package palette

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
)

// CategoryAll matches every category in a search.
const CategoryAll = "all"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrNodeTypeNotFound = errors.New("node type not found")
)

// GraphSeeder is the part of the graph store a template load writes through.
type GraphSeeder interface {
	ReplaceGraph(nodes []*models.WorkflowNode, connections []*models.Connection) error
	UpdateWorkflowMeta(update graph.MetaUpdate) error
}

// Palette is a read-only catalog of node types and templates.
type Palette struct {
	catalog   []models.NodeTypeDefinition
	templates []*Template
}

// New creates a palette over the given catalog and templates.
func New(catalog []models.NodeTypeDefinition, templates []*Template) *Palette {
	return &Palette{
		catalog:   slices.Clone(catalog),
		templates: slices.Clone(templates),
	}
}

// Default returns the built-in palette.
func Default() *Palette {
	return New(DefaultCatalog(), DefaultTemplates())
}

// Catalog returns every node type definition.
func (p *Palette) Catalog() []models.NodeTypeDefinition {
	return slices.Clone(p.catalog)
}

// Definition looks up the definition of a node type.
func (p *Palette) Definition(nodeType models.NodeType) (models.NodeTypeDefinition, error) {
	for _, def := range p.catalog {
		if def.Type == nodeType {
			return def, nil
		}
	}

	return models.NodeTypeDefinition{}, fmt.Errorf("%w: %q", ErrNodeTypeNotFound, nodeType)
}

func matches(query, category string, texts []string, itemCategory string) bool {
	if category != "" && category != CategoryAll && !strings.EqualFold(category, itemCategory) {
		return false
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	for _, text := range texts {
		if strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}

	return false
}

// Search filters node types by a case-insensitive substring of label or description and
// by category. An empty category or "all" matches any category.
func (p *Palette) Search(query, category string) []models.NodeTypeDefinition {
	result := make([]models.NodeTypeDefinition, 0, len(p.catalog))

	for _, def := range p.catalog {
		if matches(query, category, []string{def.Label, def.Description}, string(def.Category)) {
			result = append(result, def)
		}
	}

	return result
}

// Templates returns every template.
func (p *Palette) Templates() []*Template {
	return slices.Clone(p.templates)
}

// SearchTemplates filters templates the same way Search filters node types.
func (p *Palette) SearchTemplates(query, category string) []*Template {
	result := make([]*Template, 0, len(p.templates))

	for _, tmpl := range p.templates {
		if matches(query, category, []string{tmpl.Name, tmpl.Description}, tmpl.Category) {
			result = append(result, tmpl)
		}
	}

	return result
}

// Template looks up a template by id.
func (p *Palette) Template(id string) (*Template, error) {
	for _, tmpl := range p.templates {
		if tmpl.ID == id {
			return tmpl, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

// LoadTemplate replaces the seeder's graph with the template's nodes and connections.
// Node ids are re-keyed by the store. Workflow metadata changes only when the template
// carries properties.
func LoadTemplate(seeder GraphSeeder, tmpl *Template) error {
	err := seeder.ReplaceGraph(tmpl.Nodes, tmpl.Connections)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", tmpl.ID, err)
	}

	if tmpl.Properties == nil {
		return nil
	}

	err = seeder.UpdateWorkflowMeta(graph.MetaUpdate{Properties: tmpl.Properties})
	if err != nil {
		return fmt.Errorf("failed to apply template %s properties: %w", tmpl.ID, err)
	}

	return nil
}
