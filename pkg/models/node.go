package models

import "maps"

// NodeType is the closed enumeration of workflow step kinds.
type NodeType string

const (
	NodeTypeStart         NodeType = "start"
	NodeTypeEnd           NodeType = "end"
	NodeTypeApproval      NodeType = "approval"
	NodeTypeMultiApproval NodeType = "multi-approval"
	NodeTypeDecision      NodeType = "decision"
	NodeTypeNotification  NodeType = "notification"
	NodeTypeParallel      NodeType = "parallel"
	NodeTypeMerge         NodeType = "merge"
	NodeTypeTimer         NodeType = "timer"
	NodeTypeEscalation    NodeType = "escalation"
)

// NodeTypes returns every known node type in palette order.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeStart,
		NodeTypeEnd,
		NodeTypeApproval,
		NodeTypeMultiApproval,
		NodeTypeDecision,
		NodeTypeNotification,
		NodeTypeParallel,
		NodeTypeMerge,
		NodeTypeTimer,
		NodeTypeEscalation,
	}
}

// IsKnown reports whether t belongs to the enumeration.
func (t NodeType) IsKnown() bool {
	for _, known := range NodeTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// Position is a point in canvas space (unscaled, unpanned).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p minus d.
func (p Position) Sub(d Position) Position {
	return Position{X: p.X - d.X, Y: p.Y - d.Y}
}

// WorkflowNode represents a typed step in a workflow graph.
type WorkflowNode struct {
	ID         string         `json:"id"         validate:"required"`
	Type       NodeType       `json:"type"       validate:"required"`
	Label      string         `json:"label"`
	Position   Position       `json:"position"`
	Properties map[string]any `json:"properties"`
}

// Clone returns a copy of the node with its own property map.
func (n *WorkflowNode) Clone() *WorkflowNode {
	if n == nil {
		return nil
	}

	clone := *n

	clone.Properties = maps.Clone(n.Properties)
	if clone.Properties == nil {
		clone.Properties = make(map[string]any)
	}

	return &clone
}

// Connection is a directed, optionally labeled edge between two nodes.
type Connection struct {
	From  string `json:"from"            validate:"required"`
	To    string `json:"to"              validate:"required"`
	Label string `json:"label,omitempty"`
}

// References reports whether the connection touches the node.
func (c *Connection) References(nodeID string) bool {
	return c.From == nodeID || c.To == nodeID
}

// NodeCategory groups node types in the palette.
type NodeCategory string

const (
	NodeCategoryFlow     NodeCategory = "flow"
	NodeCategoryApproval NodeCategory = "approval"
	NodeCategoryLogic    NodeCategory = "logic"
	NodeCategoryAction   NodeCategory = "action"
)

// NodeTypeDefinition describes a node type offered by the palette.
type NodeTypeDefinition struct {
	Type        NodeType     `json:"type"`
	Label       string       `json:"label"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
	Category    NodeCategory `json:"category"`
}
