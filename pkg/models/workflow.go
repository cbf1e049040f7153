// Package models defines the domain models of the approval workflow designer.
package models

import (
	"slices"
	"strings"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Editable
	WorkflowStatusPublished WorkflowStatus = "published" // Read-only until unpublished
)

// DefaultWorkflowName is the name given to workflows created without one.
const DefaultWorkflowName = "New Workflow"

// Triggers selects which contract events start a workflow.
type Triggers struct {
	NewContract  bool `json:"new_contract"`
	Modification bool `json:"modification"`
	Renewal      bool `json:"renewal"`
}

// WorkflowProperties holds workflow-level configuration.
type WorkflowProperties struct {
	Active        bool     `json:"active"`
	Priority      int      `json:"priority"       validate:"min=0,max=10"`
	ContractTypes []string `json:"contract_types"`
	Triggers      Triggers `json:"triggers"`
}

// Workflow is an approval workflow graph together with its metadata.
type Workflow struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"                   validate:"required"`
	Description string             `json:"description"`
	Status      WorkflowStatus     `json:"status"`
	Owner       string             `json:"owner,omitempty"`
	Nodes       []*WorkflowNode    `json:"nodes"`       // Insertion order, not execution order
	Connections []*Connection      `json:"connections"` // Insertion order
	Properties  WorkflowProperties `json:"properties"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
}

// NewWorkflow returns an empty draft workflow.
func NewWorkflow(id, name string) *Workflow {
	if strings.TrimSpace(name) == "" {
		name = DefaultWorkflowName
	}

	return &Workflow{
		ID:          id,
		Name:        name,
		Status:      WorkflowStatusDraft,
		Nodes:       make([]*WorkflowNode, 0),
		Connections: make([]*Connection, 0),
		Properties: WorkflowProperties{
			Active:        true,
			Priority:      1,
			ContractTypes: make([]string, 0),
			Triggers:      Triggers{NewContract: true},
		},
	}
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w

	clone.Nodes = make([]*WorkflowNode, len(w.Nodes))
	for i, node := range w.Nodes {
		clone.Nodes[i] = node.Clone()
	}

	clone.Connections = make([]*Connection, len(w.Connections))
	for i, conn := range w.Connections {
		c := *conn
		clone.Connections[i] = &c
	}

	clone.Properties.ContractTypes = slices.Clone(w.Properties.ContractTypes)
	if clone.Properties.ContractTypes == nil {
		clone.Properties.ContractTypes = make([]string, 0)
	}

	if w.PublishedAt != nil {
		publishedAt := *w.PublishedAt
		clone.PublishedAt = &publishedAt
	}

	return &clone
}

// IsPublished reports whether the workflow is in published state.
func (w *Workflow) IsPublished() bool {
	return w.Status == WorkflowStatusPublished
}

// NormalizeContractTypes returns the contract types as a sorted set.
func NormalizeContractTypes(types []string) []string {
	set := make([]string, 0, len(types))

	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(set, t) {
			continue
		}

		set = append(set, t)
	}

	slices.Sort(set)

	return set
}
