package canvas

import (
	"fmt"
	"strings"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// RenderMermaid renders a workflow as a Mermaid flowchart, left to right in node order.
func RenderMermaid(workflow *models.Workflow) string {
	var b strings.Builder

	b.WriteString("flowchart LR\n")

	if workflow.Name != "" {
		fmt.Fprintf(&b, "    %%%% %s\n", workflow.Name)
	}

	known := make(map[string]bool, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		known[node.ID] = true
		fmt.Fprintf(&b, "    %s\n", mermaidNodeDef(node))
	}

	for _, conn := range workflow.Connections {
		if !known[conn.From] || !known[conn.To] {
			continue
		}

		label := ""
		if conn.Label != "" {
			label = fmt.Sprintf("|%s|", mermaidEscapeLabel(conn.Label))
		}

		fmt.Fprintf(&b, "    %s -->%s %s\n", mermaidSafeID(conn.From), label, mermaidSafeID(conn.To))
	}

	return b.String()
}

func mermaidNodeDef(node *models.WorkflowNode) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscapeLabel(node.Label)

	switch ShapeOf(node.Type) {
	case ShapePill:
		return fmt.Sprintf("%s([\"%s\"])", id, label)
	case ShapeDiamond:
		return fmt.Sprintf("%s{\"%s\"}", id, label)
	case ShapeCircle:
		return fmt.Sprintf("%s((\"%s\"))", id, label)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, label)
	}
}

// mermaidSafeID replaces characters Mermaid does not accept in identifiers.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")

	return r.Replace(id)
}

func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "|", "#124;", "\n", " ")

	return r.Replace(s)
}
