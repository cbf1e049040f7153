package palette

import "github.com/contractpulse/flowdesigner/pkg/models"

// DefaultCatalog returns the node types offered in the palette, in display order.
func DefaultCatalog() []models.NodeTypeDefinition {
	return []models.NodeTypeDefinition{
		{
			Type: models.NodeTypeStart, Label: "Start", Icon: "play-circle",
			Description: "Entry point of the approval workflow", Category: models.NodeCategoryFlow,
		},
		{
			Type: models.NodeTypeEnd, Label: "End", Icon: "stop-circle",
			Description: "Completes the workflow with an outcome", Category: models.NodeCategoryFlow,
		},
		{
			Type: models.NodeTypeApproval, Label: "Approval", Icon: "user-check",
			Description: "Single approver reviews and signs off", Category: models.NodeCategoryApproval,
		},
		{
			Type: models.NodeTypeMultiApproval, Label: "Multi-Approval", Icon: "users",
			Description: "Several approvers review in parallel", Category: models.NodeCategoryApproval,
		},
		{
			Type: models.NodeTypeDecision, Label: "Decision", Icon: "git-branch",
			Description: "Branch on contract value or contract type", Category: models.NodeCategoryLogic,
		},
		{
			Type: models.NodeTypeParallel, Label: "Parallel Split", Icon: "git-fork",
			Description: "Run several branches at the same time", Category: models.NodeCategoryLogic,
		},
		{
			Type: models.NodeTypeMerge, Label: "Merge", Icon: "git-merge",
			Description: "Join parallel branches back together", Category: models.NodeCategoryLogic,
		},
		{
			Type: models.NodeTypeNotification, Label: "Notification", Icon: "bell",
			Description: "Send an email, Slack or in-app message", Category: models.NodeCategoryAction,
		},
		{
			Type: models.NodeTypeTimer, Label: "Timer", Icon: "clock",
			Description: "Wait for a fixed duration", Category: models.NodeCategoryAction,
		},
		{
			Type: models.NodeTypeEscalation, Label: "Escalation", Icon: "alert-triangle",
			Description: "Escalate overdue approvals to another user", Category: models.NodeCategoryAction,
		},
	}
}
