package render

import (
	"fmt"
	"regexp"
	"strings"

	"supportviz/internal/blueprint"
)

var nonIDChars = regexp.MustCompile(`[^a-z0-9_]`)

// KnowledgeGraphFlow renders an insight's knowledge graph as a fenced
// Mermaid flowchart. Node shapes follow the node type.
func KnowledgeGraphFlow(g *blueprint.KnowledgeGraph) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")
	if g == nil || len(g.Nodes) == 0 {
		sb.WriteString("    empty[\"No knowledge graph\"]\n```\n")
		return sb.String()
	}
	for _, n := range g.Nodes {
		fmt.Fprintf(&sb, "    %s\n", shapedNode(sanitizeMermaidID(n.ID), n.Label, n.Type))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target))
	}
	sb.WriteString("```\n")
	return sb.String()
}

// TreeFlow renders a behavior tree top-down, one edge per parent/child pair.
func TreeFlow(root blueprint.Node) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")
	root.Walk(func(n *blueprint.Node, _ int) bool {
		id := sanitizeMermaidID(n.ID)
		fmt.Fprintf(&sb, "    %s[%q]\n", id, n.Label)
		for _, c := range n.Children {
			fmt.Fprintf(&sb, "    %s --> %s\n", id, sanitizeMermaidID(c.ID))
		}
		return true
	})
	sb.WriteString("```\n")
	return sb.String()
}

func shapedNode(id, label string, typ blueprint.GraphNodeType) string {
	label = strings.ReplaceAll(label, `"`, "'")
	switch typ {
	case blueprint.GraphInput:
		return fmt.Sprintf(`%s(["%s"])`, id, label)
	case blueprint.GraphDecision:
		return fmt.Sprintf(`%s{"%s"}`, id, label)
	case blueprint.GraphOutput:
		return fmt.Sprintf(`%s[["%s"]]`, id, label)
	default:
		return fmt.Sprintf(`%s["%s"]`, id, label)
	}
}

func sanitizeMermaidID(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	v = nonIDChars.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v == "" {
		return "node"
	}
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}
