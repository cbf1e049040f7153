package canvas

import "github.com/contractpulse/flowdesigner/pkg/models"

// Shape is the outline a node type is drawn with.
type Shape string

const (
	ShapePill    Shape = "pill"
	ShapeDiamond Shape = "diamond"
	ShapeRect    Shape = "rect"
	ShapeCircle  Shape = "circle"
)

// ShapeOf returns the outline for a node type. Unknown types get a generic circle.
func ShapeOf(nodeType models.NodeType) Shape {
	switch nodeType {
	case models.NodeTypeStart, models.NodeTypeEnd:
		return ShapePill
	case models.NodeTypeDecision:
		return ShapeDiamond
	default:
		if nodeType.IsKnown() {
			return ShapeRect
		}

		return ShapeCircle
	}
}

// NodeView is one node as it is drawn.
type NodeView struct {
	ID       string          `json:"id"`
	Type     models.NodeType `json:"type"`
	Label    string          `json:"label"`
	Shape    Shape           `json:"shape"`
	Bounds   Rect            `json:"bounds"`
	Selected bool            `json:"selected"`
}

// EdgeView is one connection as it is drawn.
type EdgeView struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
	EdgeGeometry
}

// Scene is everything needed to draw a workflow: node shapes, edge paths and label
// anchors in canvas space, plus the viewport applied as an outer transform.
type Scene struct {
	Title    string     `json:"title"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Viewport Viewport   `json:"viewport"`
	Nodes    []NodeView `json:"nodes"`
	Edges    []EdgeView `json:"edges"`
}

// BuildScene lays out a workflow. Connections to missing nodes are skipped.
func BuildScene(workflow *models.Workflow, viewport Viewport, selectedID string) Scene {
	width, height := CanvasSize(workflow.Nodes)

	scene := Scene{
		Title:    workflow.Name,
		Width:    width,
		Height:   height,
		Viewport: viewport,
		Nodes:    make([]NodeView, 0, len(workflow.Nodes)),
		Edges:    make([]EdgeView, 0, len(workflow.Connections)),
	}

	positions := make(map[string]models.Position, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		positions[node.ID] = node.Position

		scene.Nodes = append(scene.Nodes, NodeView{
			ID:       node.ID,
			Type:     node.Type,
			Label:    node.Label,
			Shape:    ShapeOf(node.Type),
			Bounds:   NodeBounds(node.Position),
			Selected: node.ID == selectedID,
		})
	}

	for _, conn := range workflow.Connections {
		from, okFrom := positions[conn.From]
		to, okTo := positions[conn.To]

		if !okFrom || !okTo {
			continue
		}

		scene.Edges = append(scene.Edges, EdgeView{
			From:         conn.From,
			To:           conn.To,
			Label:        conn.Label,
			EdgeGeometry: ConnectionGeometry(from, to),
		})
	}

	return scene
}
