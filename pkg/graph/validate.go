package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/go-playground/validator/v10"
)

// IssueCode classifies a publish-readiness problem.
type IssueCode string

const (
	IssueEmptyWorkflow     IssueCode = "empty_workflow"
	IssueMissingStart      IssueCode = "missing_start"
	IssueMultipleStarts    IssueCode = "multiple_starts"
	IssueMissingEnd        IssueCode = "missing_end"
	IssueUnknownNodeType   IssueCode = "unknown_node_type"
	IssueDanglingReference IssueCode = "dangling_reference"
	IssueCycle             IssueCode = "cycle"
	IssueUnreachable       IssueCode = "unreachable"
	IssueDecisionBranches  IssueCode = "decision_branches"
	IssueInvalidProperties IssueCode = "invalid_properties"
)

// Issue is one reason a workflow cannot be published.
type Issue struct {
	Code    IssueCode `json:"code"`
	NodeID  string    `json:"node_id,omitempty"`
	Message string    `json:"message"`
}

// Issues is the result of Validate. It is an error when non-empty.
type Issues []Issue

func (i Issues) Error() string {
	messages := make([]string, len(i))
	for n, issue := range i {
		messages[n] = issue.Message
	}

	return "workflow is not publishable: " + strings.Join(messages, "; ")
}

// HasCode reports whether any issue has the code.
func (i Issues) HasCode(code IssueCode) bool {
	return slices.ContainsFunc(i, func(issue Issue) bool { return issue.Code == code })
}

func (i *Issues) add(code IssueCode, nodeID, format string, args ...any) {
	*i = append(*i, Issue{Code: code, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

// Validate checks that a workflow is ready to publish: one start node, at least one end
// node, no cycles, every node reachable from start, two correctly labeled branches per
// decision and complete typed properties on every node.
func Validate(workflow *models.Workflow, validate *validator.Validate) Issues {
	var issues Issues

	if len(workflow.Nodes) == 0 {
		issues.add(IssueEmptyWorkflow, "", "workflow has no nodes")

		return issues
	}

	nodes := make(map[string]*models.WorkflowNode, len(workflow.Nodes))
	starts := make([]string, 0, 1)
	ends := 0

	for _, node := range workflow.Nodes {
		nodes[node.ID] = node

		switch node.Type {
		case models.NodeTypeStart:
			starts = append(starts, node.ID)
		case models.NodeTypeEnd:
			ends++
		}

		if !node.Type.IsKnown() {
			issues.add(IssueUnknownNodeType, node.ID, "node %s has unknown type %q", node.ID, node.Type)

			continue
		}

		validateProperties(&issues, node, validate)
	}

	switch len(starts) {
	case 0:
		issues.add(IssueMissingStart, "", "workflow has no start node")
	case 1:
	default:
		issues.add(IssueMultipleStarts, "", "workflow has %d start nodes", len(starts))
	}

	if ends == 0 {
		issues.add(IssueMissingEnd, "", "workflow has no end node")
	}

	outgoing := make(map[string][]*models.Connection, len(workflow.Nodes))
	dangling := false

	for _, conn := range workflow.Connections {
		if nodes[conn.From] == nil || nodes[conn.To] == nil {
			issues.add(IssueDanglingReference, conn.From, "connection %s -> %s references a missing node", conn.From, conn.To)
			dangling = true

			continue
		}

		outgoing[conn.From] = append(outgoing[conn.From], conn)
	}

	for _, node := range workflow.Nodes {
		if node.Type == models.NodeTypeDecision {
			validateDecision(&issues, node, outgoing[node.ID])
		}
	}

	if dangling {
		return issues
	}

	if cycle := findCycle(workflow.Nodes, outgoing); cycle != "" {
		issues.add(IssueCycle, cycle, "workflow contains a cycle, node %s cannot be ordered", cycle)
	}

	if len(starts) == 1 {
		reachable := reachableFrom(starts[0], outgoing)

		for _, node := range workflow.Nodes {
			if !reachable[node.ID] {
				issues.add(IssueUnreachable, node.ID, "node %s is unreachable from the start node", node.ID)
			}
		}
	}

	return issues
}

func validateProperties(issues *Issues, node *models.WorkflowNode, validate *validator.Validate) {
	typed, err := models.DecodeProperties(node.Type, node.Properties)
	if err != nil {
		issues.add(IssueInvalidProperties, node.ID, "node %s: %v", node.ID, err)

		return
	}

	err = validate.Struct(typed)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		issues.add(IssueInvalidProperties, node.ID, "node %s: %v", node.ID, err)

		return
	}

	for _, fe := range verrs {
		issues.add(IssueInvalidProperties, node.ID, "node %s (%s): %s failed on %s", node.ID, node.Label, lowerFirst(fe.Field()), fe.Tag())
	}
}

func validateDecision(issues *Issues, node *models.WorkflowNode, edges []*models.Connection) {
	if len(edges) != 2 {
		issues.add(IssueDecisionBranches, node.ID, "decision %s needs exactly 2 outgoing connections, has %d", node.ID, len(edges))

		return
	}

	trueLabel, _ := node.Properties["trueLabel"].(string)
	falseLabel, _ := node.Properties["falseLabel"].(string)

	labels := []string{edges[0].Label, edges[1].Label}
	if !slices.Contains(labels, trueLabel) || !slices.Contains(labels, falseLabel) {
		issues.add(IssueDecisionBranches, node.ID, "decision %s branches must be labeled %q and %q", node.ID, trueLabel, falseLabel)
	}
}

// findCycle runs Kahn's algorithm and returns the first node it could not order, or "".
func findCycle(nodes []*models.WorkflowNode, outgoing map[string][]*models.Connection) string {
	inDegree := make(map[string]int, len(nodes))
	for _, edges := range outgoing {
		for _, e := range edges {
			inDegree[e.To]++
		}
	}

	queue := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited++

		for _, e := range outgoing[current] {
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if visited == len(nodes) {
		return ""
	}

	for _, node := range nodes {
		if inDegree[node.ID] > 0 {
			return node.ID
		}
	}

	return ""
}

func reachableFrom(start string, outgoing map[string][]*models.Connection) map[string]bool {
	reachable := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range outgoing[current] {
			if !reachable[e.To] {
				reachable[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	return reachable
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
