package canvas

import (
	"bytes"
	"context"
	"fmt"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// RenderImage lays a workflow out with graphviz and renders it as PNG. Stored node
// positions are ignored; graphviz computes its own layout.
func RenderImage(ctx context.Context, workflow *models.Workflow) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("canvas: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("canvas: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)

	if workflow.Name != "" {
		graph.SetLabel(workflow.Name)
	}

	gvNodes := make(map[string]*cgraph.Node, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		gvNode, err := graph.CreateNodeByName(node.ID)
		if err != nil {
			return nil, fmt.Errorf("canvas: create node %s: %w", node.ID, err)
		}

		gvNode.SetLabel(node.Label)
		gvNode.SetStyle(cgraph.FilledNodeStyle)
		gvNode.SetFillColor(fillOf(node.Type))
		applyGraphvizShape(gvNode, ShapeOf(node.Type))

		gvNodes[node.ID] = gvNode
	}

	for _, conn := range workflow.Connections {
		from, to := gvNodes[conn.From], gvNodes[conn.To]
		if from == nil || to == nil {
			continue
		}

		edge, err := graph.CreateEdgeByName("", from, to)
		if err != nil {
			return nil, fmt.Errorf("canvas: create edge %s -> %s: %w", conn.From, conn.To, err)
		}

		if conn.Label != "" {
			edge.SetLabel(conn.Label)
		}
	}

	var buf bytes.Buffer

	err = gv.Render(ctx, graph, graphviz.PNG, &buf)
	if err != nil {
		return nil, fmt.Errorf("canvas: render PNG: %w", err)
	}

	return buf.Bytes(), nil
}

func applyGraphvizShape(gvNode *cgraph.Node, shape Shape) {
	switch shape {
	case ShapePill:
		gvNode.SetShape(cgraph.EllipseShape)
	case ShapeDiamond:
		gvNode.SetShape(cgraph.DiamondShape)
	case ShapeCircle:
		gvNode.SetShape(cgraph.CircleShape)
	default:
		gvNode.SetShape(cgraph.BoxShape)
	}
}
