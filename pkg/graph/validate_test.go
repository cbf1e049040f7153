package graph_test

import (
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/testutil"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishable() *models.Workflow {
	return testutil.CreateTestWorkflow(
		testutil.WithWorkflowID("wf-1"),
		testutil.WithName("Standard"),
		testutil.WithGraph(
			[]*models.WorkflowNode{
				testutil.CreateTestNode(testutil.WithNodeID("start"), testutil.WithType(models.NodeTypeStart), testutil.WithLabel("Start")),
				testutil.CreateTestNode(
					testutil.WithNodeID("check"),
					testutil.WithType(models.NodeTypeDecision),
					testutil.WithLabel("Over 50k?"),
					testutil.WithProperties(map[string]any{
						"conditionType": "amount_greater", "threshold": 50000, "trueLabel": "Yes", "falseLabel": "No",
					}),
				),
				testutil.CreateTestNode(
					testutil.WithNodeID("cfo"),
					testutil.WithLabel("CFO"),
					testutil.WithProperties(map[string]any{"approver": "sarah.johnson", "timeout": "24"}),
				),
				testutil.CreateTestNode(testutil.WithNodeID("end"), testutil.WithType(models.NodeTypeEnd), testutil.WithLabel("Done")),
			},
			testutil.Connect("start", "check", ""),
			testutil.Connect("check", "cfo", "Yes"),
			testutil.Connect("check", "end", "No"),
			testutil.Connect("cfo", "end", ""),
		),
	)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name   string
		mutate func(wf *models.Workflow)
		codes  []graph.IssueCode
	}{
		{
			name:   "publishable workflow",
			mutate: func(*models.Workflow) {},
		},
		{
			name: "empty workflow",
			mutate: func(wf *models.Workflow) {
				wf.Nodes = nil
				wf.Connections = nil
			},
			codes: []graph.IssueCode{graph.IssueEmptyWorkflow},
		},
		{
			name: "second start node",
			mutate: func(wf *models.Workflow) {
				wf.Nodes = append(wf.Nodes, &models.WorkflowNode{ID: "start2", Type: models.NodeTypeStart})
				wf.Connections = append(wf.Connections, &models.Connection{From: "start2", To: "end"})
			},
			codes: []graph.IssueCode{graph.IssueMultipleStarts},
		},
		{
			name: "no end node",
			mutate: func(wf *models.Workflow) {
				wf.Nodes[3].Type = models.NodeTypeNotification
				wf.Nodes[3].Properties = map[string]any{"recipients": "requester", "template": "approval_complete", "channel": "email"}
			},
			codes: []graph.IssueCode{graph.IssueMissingEnd},
		},
		{
			name: "approval without approver",
			mutate: func(wf *models.Workflow) {
				wf.Nodes[2].Properties["approver"] = ""
			},
			codes: []graph.IssueCode{graph.IssueInvalidProperties},
		},
		{
			name: "contract type decision without contract type",
			mutate: func(wf *models.Workflow) {
				wf.Nodes[1].Properties["conditionType"] = "contract_type"
				wf.Nodes[1].Properties["contractType"] = ""
			},
			codes: []graph.IssueCode{graph.IssueInvalidProperties},
		},
		{
			name: "amount decision with zero threshold",
			mutate: func(wf *models.Workflow) {
				wf.Nodes[1].Properties["threshold"] = 0
			},
			codes: []graph.IssueCode{graph.IssueInvalidProperties},
		},
		{
			name: "contract type decision",
			mutate: func(wf *models.Workflow) {
				wf.Nodes[1].Properties["conditionType"] = "contract_type"
				wf.Nodes[1].Properties["contractType"] = "nda"
			},
		},
		{
			name: "decision branch mislabeled",
			mutate: func(wf *models.Workflow) {
				wf.Connections[2].Label = "Otherwise"
			},
			codes: []graph.IssueCode{graph.IssueDecisionBranches},
		},
		{
			name: "decision with one branch",
			mutate: func(wf *models.Workflow) {
				wf.Connections = wf.Connections[:2]
				wf.Connections = append(wf.Connections, &models.Connection{From: "cfo", To: "end"})
			},
			codes: []graph.IssueCode{graph.IssueDecisionBranches},
		},
		{
			name: "cycle",
			mutate: func(wf *models.Workflow) {
				wf.Connections[3] = &models.Connection{From: "cfo", To: "check"}
				wf.Connections = append(wf.Connections, &models.Connection{From: "check", To: "cfo", Label: "Again"})
			},
			codes: []graph.IssueCode{graph.IssueDecisionBranches, graph.IssueCycle},
		},
		{
			name: "orphan node",
			mutate: func(wf *models.Workflow) {
				wf.Nodes = append(wf.Nodes, &models.WorkflowNode{ID: "orphan", Type: models.NodeTypeMerge, Properties: map[string]any{"waitFor": "all"}})
			},
			codes: []graph.IssueCode{graph.IssueUnreachable},
		},
		{
			name: "unknown type",
			mutate: func(wf *models.Workflow) {
				wf.Nodes = append(wf.Nodes, &models.WorkflowNode{ID: "hook", Type: "webhook"})
				wf.Connections = append(wf.Connections, &models.Connection{From: "cfo", To: "hook"})
			},
			codes: []graph.IssueCode{graph.IssueUnknownNodeType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wf := publishable()
			tt.mutate(wf)

			issues := graph.Validate(wf, validate)

			codes := make([]graph.IssueCode, 0, len(issues))
			for _, issue := range issues {
				codes = append(codes, issue.Code)
			}

			if len(tt.codes) == 0 {
				require.Empty(t, issues)

				return
			}

			assert.ElementsMatch(t, tt.codes, codes)

			for _, code := range tt.codes {
				assert.True(t, issues.HasCode(code))
			}

			assert.Contains(t, issues.Error(), "workflow is not publishable")
		})
	}
}
