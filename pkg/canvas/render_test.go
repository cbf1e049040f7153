package canvas_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderWorkflow() *models.Workflow {
	wf := models.NewWorkflow("wf-render", "Render <Test>")
	wf.Nodes = []*models.WorkflowNode{
		{ID: "start-1", Type: models.NodeTypeStart, Label: "Start", Position: models.Position{X: 100, Y: 200}},
		{ID: "decision-1", Type: models.NodeTypeDecision, Label: "Value > 50k?", Position: models.Position{X: 300, Y: 200}},
		{ID: "approval-1", Type: models.NodeTypeApproval, Label: "CFO \"sign-off\"", Position: models.Position{X: 500, Y: 100}},
		{ID: "hook-1", Type: "webhook", Label: "Hook", Position: models.Position{X: 500, Y: 300}},
	}
	wf.Connections = []*models.Connection{
		{From: "start-1", To: "decision-1"},
		{From: "decision-1", To: "approval-1", Label: "Yes"},
		{From: "decision-1", To: "hook-1", Label: "No"},
	}

	return wf
}

func TestRenderSVG(t *testing.T) {
	t.Parallel()

	scene := canvas.BuildScene(renderWorkflow(), canvas.Viewport{Zoom: 1.5, Pan: models.Position{X: 10, Y: -20}}, "approval-1")

	var buf bytes.Buffer
	require.NoError(t, canvas.RenderSVG(&buf, scene))

	out := buf.String()

	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg" width="2000" height="1500"`)
	assert.Contains(t, out, `transform="scale(1.5) translate(10 -20)"`)
	assert.Contains(t, out, `d="M 220 230 Q 260 230 260 230 Q 260 230 300 230"`)
	assert.Contains(t, out, `<polygon points="360,200 420,230 360,260 300,230"`)
	assert.Contains(t, out, `<circle cx="560" cy="330" r="30"`)
	assert.Contains(t, out, `rx="30"`)
	assert.Contains(t, out, `class="node selected" data-id="approval-1"`)
	assert.Contains(t, out, "<title>Render &lt;Test&gt;</title>")
	assert.Contains(t, out, "Value &gt; 50k?")
	assert.Contains(t, out, ">Yes</text>")
}

func TestRenderMermaid(t *testing.T) {
	t.Parallel()

	out := canvas.RenderMermaid(renderWorkflow())

	assert.Contains(t, out, "flowchart LR\n")
	assert.Contains(t, out, "%% Render <Test>")
	assert.Contains(t, out, `start_1(["Start"])`)
	assert.Contains(t, out, `decision_1{"Value > 50k?"}`)
	assert.Contains(t, out, `approval_1["CFO #quot;sign-off#quot;"]`)
	assert.Contains(t, out, `hook_1(("Hook"))`)
	assert.Contains(t, out, "start_1 --> decision_1\n")
	assert.Contains(t, out, "decision_1 -->|Yes| approval_1\n")
	assert.Contains(t, out, "decision_1 -->|No| hook_1\n")
}

func TestRenderImage(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}

	png, err := canvas.RenderImage(context.Background(), renderWorkflow())
	require.NoError(t, err)
	require.Greater(t, len(png), 8)

	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
