package palette_test

import (
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(defs []models.NodeTypeDefinition) []models.NodeType {
	result := make([]models.NodeType, len(defs))
	for i, def := range defs {
		result[i] = def.Type
	}

	return result
}

func TestPalette_CatalogCoversEveryNodeType(t *testing.T) {
	t.Parallel()

	p := palette.Default()

	assert.ElementsMatch(t, models.NodeTypes(), types(p.Catalog()))

	registry := schema.MustNewRegistry()
	for _, def := range p.Catalog() {
		assert.True(t, registry.Has(def.Type), def.Type)
		assert.NotEmpty(t, def.Icon)
	}
}

func TestPalette_Search(t *testing.T) {
	t.Parallel()

	p := palette.Default()

	tests := []struct {
		name     string
		query    string
		category string
		expected []models.NodeType
	}{
		{
			name:     "empty query and category match everything",
			expected: models.NodeTypes(),
		},
		{
			name:     "all category",
			query:    "",
			category: "all",
			expected: models.NodeTypes(),
		},
		{
			name:     "label match is case insensitive",
			query:    "APPROVAL",
			expected: []models.NodeType{models.NodeTypeApproval, models.NodeTypeMultiApproval, models.NodeTypeStart, models.NodeTypeEscalation},
		},
		{
			name:     "description match",
			query:    "slack",
			expected: []models.NodeType{models.NodeTypeNotification},
		},
		{
			name:     "category filter",
			category: "logic",
			expected: []models.NodeType{models.NodeTypeDecision, models.NodeTypeParallel, models.NodeTypeMerge},
		},
		{
			name:     "query and category are combined",
			query:    "approv",
			category: "approval",
			expected: []models.NodeType{models.NodeTypeApproval, models.NodeTypeMultiApproval},
		},
		{
			name:     "no match",
			query:    "blockchain",
			expected: []models.NodeType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.ElementsMatch(t, tt.expected, types(p.Search(tt.query, tt.category)))
		})
	}
}

func TestPalette_Definition(t *testing.T) {
	t.Parallel()

	p := palette.Default()

	def, err := p.Definition(models.NodeTypeTimer)
	require.NoError(t, err)
	assert.Equal(t, "Timer", def.Label)

	_, err = p.Definition("webhook")
	assert.ErrorIs(t, err, palette.ErrNodeTypeNotFound)
}

func TestPalette_Templates(t *testing.T) {
	t.Parallel()

	p := palette.Default()

	tmpl, err := p.Template("high-value")
	require.NoError(t, err)
	assert.Equal(t, 5, tmpl.NodeCount())
	assert.Equal(t, 5, tmpl.Summary().NodeCount)

	_, err = p.Template("missing")
	assert.ErrorIs(t, err, palette.ErrTemplateNotFound)

	found := p.SearchTemplates("vendor", "")
	require.Len(t, found, 1)
	assert.Equal(t, "vendor-onboarding", found[0].ID)

	assert.Len(t, p.SearchTemplates("", "standard"), 2)
}

func TestLoadTemplate_PreservesMetadata(t *testing.T) {
	t.Parallel()

	validate := validator.New(validator.WithRequiredStructEnabled())

	for _, tmpl := range palette.Default().Templates() {
		t.Run(tmpl.ID, func(t *testing.T) {
			t.Parallel()

			wf := models.NewWorkflow("wf-1", models.DefaultWorkflowName)
			wf.Description = "Keep this"
			wf.Properties.Triggers.Renewal = true

			store, err := graph.NewStore(wf, schema.MustNewRegistry())
			require.NoError(t, err)

			_, err = store.AddNode(models.NodeTypeDefinition{Type: models.NodeTypeTimer, Label: "Old"}, nil)
			require.NoError(t, err)

			require.NoError(t, palette.LoadTemplate(store, tmpl))

			loaded := store.Workflow()
			assert.Len(t, loaded.Nodes, tmpl.NodeCount())
			assert.Len(t, loaded.Connections, len(tmpl.Connections))
			assert.Equal(t, models.DefaultWorkflowName, loaded.Name)
			assert.Equal(t, "Keep this", loaded.Description)
			assert.True(t, loaded.Properties.Triggers.Renewal)
			assert.True(t, loaded.Properties.Triggers.NewContract)

			if tmpl.Properties == nil {
				assert.Empty(t, loaded.Properties.ContractTypes)
			} else {
				assert.Equal(t, tmpl.Properties.ContractTypes, loaded.Properties.ContractTypes)
			}

			assert.Empty(t, graph.Validate(loaded, validate))

			// The template itself is not modified by the load.
			for _, node := range loaded.Nodes {
				for _, original := range tmpl.Nodes {
					assert.NotEqual(t, original.ID, node.ID)
				}
			}
		})
	}
}
