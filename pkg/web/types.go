// Package web provides HTTP request and response types for the workflow designer API.
package web

import (
	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/schema"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
// An empty name falls back to the default workflow name.
type CreateWorkflowRequest struct {
	Name        string `json:"name"                  validate:"omitempty,max=255"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TemplateID  string `json:"template_id,omitempty"`
}

// AddNodeRequest represents the request body for dropping a node on the canvas.
// A nil position places the node at the default drop point.
type AddNodeRequest struct {
	Type     models.NodeType  `json:"type"               validate:"required"`
	Position *models.Position `json:"position,omitempty"`
}

// UpdateNodeRequest represents a node move and/or a partial property update.
type UpdateNodeRequest struct {
	Position   *models.Position `json:"position,omitempty"   validate:"required_without=Properties"`
	Properties map[string]any   `json:"properties,omitempty" validate:"required_without=Position"`
}

// AddConnectionRequest represents the request body for linking two nodes.
type AddConnectionRequest struct {
	From  string `json:"from"            validate:"required"`
	To    string `json:"to"              validate:"required"`
	Label string `json:"label,omitempty" validate:"max=64"`
}

// LoadTemplateRequest represents the request body for applying a template.
type LoadTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// ViewRequest changes the canvas view of an editing session.
type ViewRequest struct {
	Action string `json:"action" validate:"required,oneof=zoom_in zoom_out reset select clear"`
	NodeID string `json:"node_id,omitempty" validate:"required_if=Action select"`
}

// RemoveNodeResponse lists the connections removed together with a node.
type RemoveNodeResponse struct {
	NodeID             string               `json:"node_id"`
	RemovedConnections []*models.Connection `json:"removed_connections"`
}

// ValidationResponse reports whether a workflow can be published.
type ValidationResponse struct {
	Publishable bool         `json:"publishable"`
	Issues      graph.Issues `json:"issues"`
}

// SchemaResponse describes the property panel of a node type.
type SchemaResponse struct {
	Type       models.NodeType    `json:"type"`
	Fields     []schema.Field     `json:"fields"`
	Defaults   map[string]any     `json:"defaults"`
	JSONSchema *schema.JSONSchema `json:"json_schema"`
}

// CanvasResponse is the view state of an editing session together with its laid out scene.
type CanvasResponse struct {
	State models.CanvasViewState `json:"state"`
	Scene canvas.Scene           `json:"scene"`
}

// IssuesProblem is an RFC 7807 problem document extended with publish validation issues.
type IssuesProblem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail"`
	Instance string       `json:"instance"`
	Issues   graph.Issues `json:"issues"`
}

// WorkflowMetaRequest is the PATCH body for workflow-level fields.
type WorkflowMetaRequest = graph.MetaUpdate
