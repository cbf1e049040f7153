package palette

import (
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Template is a prebuilt graph used to seed a workflow. Properties, when set, are merged
// into the workflow on load; otherwise workflow metadata is left alone.
type Template struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Nodes       []*models.WorkflowNode  `json:"nodes"`
	Connections []*models.Connection    `json:"connections"`
	Properties  *graph.PropertiesUpdate `json:"properties,omitempty"`
}

// NodeCount returns the number of nodes the template creates.
func (t *Template) NodeCount() int {
	return len(t.Nodes)
}

// Summary is the listing form of a template.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	NodeCount   int    `json:"node_count"`
}

// Summary returns the listing form of the template.
func (t *Template) Summary() Summary {
	return Summary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		NodeCount:   t.NodeCount(),
	}
}

func node(id string, nodeType models.NodeType, label string, x, y float64, props map[string]any) *models.WorkflowNode {
	if props == nil {
		props = map[string]any{}
	}

	return &models.WorkflowNode{
		ID:         id,
		Type:       nodeType,
		Label:      label,
		Position:   models.Position{X: x, Y: y},
		Properties: props,
	}
}

func edge(from, to, label string) *models.Connection {
	return &models.Connection{From: from, To: to, Label: label}
}

// DefaultTemplates returns the built-in templates. Every one of them passes publish
// validation as is.
func DefaultTemplates() []*Template {
	vendorOnly := []string{"vendor"}

	return []*Template{
		{
			ID:          "standard-approval",
			Name:        "Standard Approval",
			Description: "Single legal review followed by a notification to the requester",
			Category:    "standard",
			Nodes: []*models.WorkflowNode{
				node("start", models.NodeTypeStart, "Contract Submitted", 100, 200, nil),
				node("legal", models.NodeTypeApproval, "Legal Review", 300, 200, map[string]any{
					"approver": "john.smith", "timeout": "24",
				}),
				node("notify", models.NodeTypeNotification, "Notify Requester", 500, 200, map[string]any{
					"recipients": "requester", "template": "approval_complete", "channel": "email",
				}),
				node("end", models.NodeTypeEnd, "Approved", 700, 200, map[string]any{"outcome": "approved"}),
			},
			Connections: []*models.Connection{
				edge("start", "legal", ""),
				edge("legal", "notify", ""),
				edge("notify", "end", ""),
			},
		},
		{
			ID:          "high-value",
			Name:        "High-Value Contract",
			Description: "Contracts above 100k go to the CFO, the rest to the contract manager",
			Category:    "finance",
			Nodes: []*models.WorkflowNode{
				node("start", models.NodeTypeStart, "Contract Submitted", 100, 250, nil),
				node("check", models.NodeTypeDecision, "Value over 100k?", 300, 250, map[string]any{
					"conditionType": "amount_greater", "threshold": float64(100000), "trueLabel": "Yes", "falseLabel": "No",
				}),
				node("cfo", models.NodeTypeApproval, "CFO Approval", 500, 150, map[string]any{
					"approver": "sarah.johnson", "fallbackApprover": "robert.wilson", "timeout": "48", "requireComments": true,
				}),
				node("manager", models.NodeTypeApproval, "Manager Approval", 500, 350, map[string]any{
					"approver": "lisa.anderson", "timeout": "24",
				}),
				node("end", models.NodeTypeEnd, "Approved", 700, 250, map[string]any{"outcome": "approved"}),
			},
			Connections: []*models.Connection{
				edge("start", "check", ""),
				edge("check", "cfo", "Yes"),
				edge("check", "manager", "No"),
				edge("cfo", "end", ""),
				edge("manager", "end", ""),
			},
		},
		{
			ID:          "parallel-review",
			Name:        "Parallel Review",
			Description: "Legal and compliance review at the same time, then the requester is notified",
			Category:    "standard",
			Nodes: []*models.WorkflowNode{
				node("start", models.NodeTypeStart, "Contract Submitted", 100, 250, nil),
				node("split", models.NodeTypeParallel, "Split Review", 300, 250, map[string]any{"branches": 2}),
				node("legal", models.NodeTypeApproval, "Legal Review", 500, 150, map[string]any{
					"approver": "john.smith", "timeout": "48",
				}),
				node("compliance", models.NodeTypeApproval, "Compliance Review", 500, 350, map[string]any{
					"approver": "emily.chen", "timeout": "48",
				}),
				node("join", models.NodeTypeMerge, "Join Reviews", 700, 250, map[string]any{"waitFor": "all"}),
				node("notify", models.NodeTypeNotification, "Notify Requester", 900, 250, map[string]any{
					"recipients": "requester", "template": "approval_complete", "channel": "email",
				}),
				node("end", models.NodeTypeEnd, "Approved", 1100, 250, map[string]any{"outcome": "approved"}),
			},
			Connections: []*models.Connection{
				edge("start", "split", ""),
				edge("split", "legal", ""),
				edge("split", "compliance", ""),
				edge("legal", "join", ""),
				edge("compliance", "join", ""),
				edge("join", "notify", ""),
				edge("notify", "end", ""),
			},
		},
		{
			ID:          "vendor-onboarding",
			Name:        "Vendor Onboarding",
			Description: "Procurement signs off vendor agreements with escalation after two days",
			Category:    "procurement",
			Nodes: []*models.WorkflowNode{
				node("start", models.NodeTypeStart, "Vendor Agreement Submitted", 100, 200, nil),
				node("procurement", models.NodeTypeApproval, "Procurement Approval", 300, 200, map[string]any{
					"approver": "mike.davis", "timeout": "48", "allowDelegation": true,
				}),
				node("escalate", models.NodeTypeEscalation, "Escalate to CEO", 500, 200, map[string]any{
					"escalateTo": "robert.wilson", "afterHours": 48, "notifyOriginal": true,
				}),
				node("wait", models.NodeTypeTimer, "Cooling-off Period", 700, 200, map[string]any{
					"duration": 1, "unit": "days",
				}),
				node("end", models.NodeTypeEnd, "Onboarded", 900, 200, map[string]any{"outcome": "completed"}),
			},
			Connections: []*models.Connection{
				edge("start", "procurement", ""),
				edge("procurement", "escalate", ""),
				edge("escalate", "wait", ""),
				edge("wait", "end", ""),
			},
			Properties: &graph.PropertiesUpdate{ContractTypes: vendorOnly},
		},
	}
}
