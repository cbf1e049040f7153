package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkflowFile(t *testing.T, workflow any) string {
	t.Helper()

	data, err := json.Marshal(workflow)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func templateWorkflow(t *testing.T, templateID string) *models.Workflow {
	t.Helper()

	tmpl, err := palette.Default().Template(templateID)
	require.NoError(t, err)

	workflow := models.NewWorkflow("wf-"+templateID, tmpl.Name)
	workflow.Nodes = tmpl.Nodes
	workflow.Connections = tmpl.Connections

	return workflow
}

func TestValidateWorkflowFile(t *testing.T) {
	t.Parallel()

	t.Run("publishable", func(t *testing.T) {
		t.Parallel()

		path := writeWorkflowFile(t, templateWorkflow(t, "standard-approval"))

		var out bytes.Buffer
		require.NoError(t, validateWorkflowFile(&out, path))
		assert.Contains(t, out.String(), "publishable")
	})

	t.Run("missing end", func(t *testing.T) {
		t.Parallel()

		workflow := models.NewWorkflow("wf-broken", "Broken")
		workflow.Nodes = []*models.WorkflowNode{
			{ID: "start", Type: models.NodeTypeStart, Label: "Start", Properties: map[string]any{}},
		}

		var out bytes.Buffer
		err := validateWorkflowFile(&out, writeWorkflowFile(t, workflow))
		require.ErrorIs(t, err, ErrNotPublishable)
		assert.Contains(t, out.String(), "missing_end")
	})

	t.Run("unknown property key", func(t *testing.T) {
		t.Parallel()

		workflow := templateWorkflow(t, "standard-approval")
		workflow.Nodes[0] = workflow.Nodes[0].Clone()
		workflow.Nodes[0].Properties = map[string]any{"color": "red"}

		var out bytes.Buffer
		err := validateWorkflowFile(&out, writeWorkflowFile(t, workflow))
		require.ErrorIs(t, err, ErrNotPublishable)
		assert.Contains(t, out.String(), "invalid_properties")
	})

	t.Run("not a workflow document", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		err := validateWorkflowFile(&out, writeWorkflowFile(t, map[string]any{"name": "No graph"}))
		require.ErrorIs(t, err, schema.ErrInvalidDocument)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		require.Error(t, validateWorkflowFile(&out, filepath.Join(t.TempDir(), "nope.json")))
	})
}

func TestRenderWorkflowFile(t *testing.T) {
	t.Parallel()

	path := writeWorkflowFile(t, templateWorkflow(t, "standard-approval"))
	ctx := context.Background()

	var svg bytes.Buffer
	require.NoError(t, renderWorkflowFile(ctx, &svg, path, "svg"))
	assert.Contains(t, svg.String(), "<svg")

	var mermaid bytes.Buffer
	require.NoError(t, renderWorkflowFile(ctx, &mermaid, path, "mermaid"))
	assert.True(t, strings.HasPrefix(mermaid.String(), "flowchart LR"))

	var other bytes.Buffer
	require.Error(t, renderWorkflowFile(ctx, &other, path, "gif"))
}

func TestListTemplates(t *testing.T) {
	t.Parallel()

	var table bytes.Buffer
	require.NoError(t, listTemplates(&table, palette.Default(), "", "", false))

	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	require.Len(t, lines, len(palette.Default().Templates())+1)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, table.String(), "standard-approval")

	var filtered bytes.Buffer
	require.NoError(t, listTemplates(&filtered, palette.Default(), "", "finance", true))

	var templates []*palette.Template
	require.NoError(t, json.Unmarshal(filtered.Bytes(), &templates))
	require.NotEmpty(t, templates)

	for _, tmpl := range templates {
		assert.Equal(t, "finance", tmpl.Category)
	}
}
