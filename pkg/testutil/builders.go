// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:         "node-" + uuid.New().String(),
		Type:       models.NodeTypeApproval,
		Label:      "Test Node",
		Position:   models.Position{X: 100, Y: 200},
		Properties: map[string]any{"approver": "john.smith", "timeout": "24"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeID sets the node id.
func WithNodeID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithType sets the node type and clears type-specific properties.
func WithType(nodeType models.NodeType) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
		n.Properties = map[string]any{}
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Label = label
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithProperties sets the node properties.
func WithProperties(props map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Properties = props
	}
}

// Connect returns a connection between two node ids.
func Connect(from, to, label string) *models.Connection {
	return &models.Connection{From: from, To: to, Label: label}
}

// CreateTestWorkflow creates an empty draft workflow that can be overridden.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := models.NewWorkflow("wf-"+uuid.New().String(), "Test Workflow")

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow id.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithName sets the workflow name.
func WithName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithGraph sets the workflow nodes and connections.
func WithGraph(nodes []*models.WorkflowNode, connections ...*models.Connection) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = nodes

		w.Connections = connections
		if w.Connections == nil {
			w.Connections = []*models.Connection{}
		}
	}
}

// WithWorkflowProperties sets the workflow properties.
func WithWorkflowProperties(active bool, priority int, contractTypes ...string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Properties.Active = active
		w.Properties.Priority = priority
		w.Properties.ContractTypes = contractTypes
	}
}

// WithCreatedAt sets both timestamps.
func WithCreatedAt(at time.Time) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.CreatedAt = at
		w.UpdatedAt = at
	}
}
