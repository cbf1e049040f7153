package canvas_test

import (
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionGeometry(t *testing.T) {
	t.Parallel()

	geo := canvas.ConnectionGeometry(models.Position{X: 100, Y: 200}, models.Position{X: 300, Y: 200})

	assert.Equal(t, models.Position{X: 220, Y: 230}, geo.Source)
	assert.Equal(t, models.Position{X: 300, Y: 230}, geo.Target)
	assert.Equal(t, "M 220 230 Q 260 230 260 230 Q 260 230 300 230", geo.Path)
	assert.Equal(t, models.Position{X: 260, Y: 220}, geo.LabelAt)
}

func TestConnectionGeometry_Vertical(t *testing.T) {
	t.Parallel()

	geo := canvas.ConnectionGeometry(models.Position{X: 0, Y: 0}, models.Position{X: 200, Y: 100})

	assert.Equal(t, "M 120 30 Q 160 30 160 80 Q 160 130 200 130", geo.Path)
	assert.Equal(t, models.Position{X: 160, Y: 70}, geo.LabelAt)
}

func TestScene_AnchorsIgnoreViewport(t *testing.T) {
	t.Parallel()

	wf := models.NewWorkflow("wf", "Anchors")
	wf.Nodes = []*models.WorkflowNode{
		{ID: "a", Type: models.NodeTypeStart, Position: models.Position{X: 100, Y: 200}},
		{ID: "b", Type: models.NodeTypeEnd, Position: models.Position{X: 300, Y: 200}},
	}
	wf.Connections = []*models.Connection{{From: "a", To: "b"}}

	viewports := []canvas.Viewport{
		canvas.NewViewport(),
		{Zoom: 0.25, Pan: models.Position{X: 500, Y: -300}},
		{Zoom: 2, Pan: models.Position{X: -75.5, Y: 12.25}},
	}

	var first canvas.EdgeView

	for i, v := range viewports {
		scene := canvas.BuildScene(wf, v, "")
		require.Len(t, scene.Edges, 1)

		if i == 0 {
			first = scene.Edges[0]

			continue
		}

		assert.Equal(t, first, scene.Edges[0])
	}

	assert.Equal(t, models.Position{X: 220, Y: 230}, first.Source)
	assert.Equal(t, models.Position{X: 300, Y: 230}, first.Target)
}

func TestCanvasSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		nodes         []*models.WorkflowNode
		width, height float64
	}{
		{name: "empty graph", width: 2000, height: 1500},
		{name: "nodes inside minimum", nodes: []*models.WorkflowNode{{Position: models.Position{X: 1500, Y: 1000}}}, width: 2000, height: 1500},
		{name: "grows to cover far node", nodes: []*models.WorkflowNode{{Position: models.Position{X: 2400, Y: 1600}}}, width: 2620, height: 1760},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			width, height := canvas.CanvasSize(tt.nodes)
			assert.InDelta(t, tt.width, width, 1e-9)
			assert.InDelta(t, tt.height, height, 1e-9)
		})
	}
}

func TestShapeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, canvas.ShapePill, canvas.ShapeOf(models.NodeTypeStart))
	assert.Equal(t, canvas.ShapePill, canvas.ShapeOf(models.NodeTypeEnd))
	assert.Equal(t, canvas.ShapeDiamond, canvas.ShapeOf(models.NodeTypeDecision))
	assert.Equal(t, canvas.ShapeRect, canvas.ShapeOf(models.NodeTypeApproval))
	assert.Equal(t, canvas.ShapeCircle, canvas.ShapeOf("webhook"))
}

func TestBuildScene_SkipsDanglingEdges(t *testing.T) {
	t.Parallel()

	wf := models.NewWorkflow("wf", "Dangling")
	wf.Nodes = []*models.WorkflowNode{{ID: "a", Type: models.NodeTypeStart}}
	wf.Connections = []*models.Connection{{From: "a", To: "gone"}}

	scene := canvas.BuildScene(wf, canvas.NewViewport(), "a")

	assert.Empty(t, scene.Edges)
	require.Len(t, scene.Nodes, 1)
	assert.True(t, scene.Nodes[0].Selected)
	assert.Equal(t, canvas.Rect{X: 0, Y: 0, Width: 120, Height: 60}, scene.Nodes[0].Bounds)
}
