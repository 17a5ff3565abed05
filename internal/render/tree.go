package render

import (
	"fmt"
	"io"
	"strings"

	"supportviz/internal/blueprint"

	"github.com/fatih/color"
)

var (
	completedColor = color.New(color.FgGreen)
	activeColor    = color.New(color.FgYellow, color.Bold)
	pendingColor   = color.New(color.Faint)
	labelColor     = color.New(color.Bold)
)

func statusMark(s blueprint.Status) string {
	switch s {
	case blueprint.StatusCompleted:
		return completedColor.Sprint("[done]")
	case blueprint.StatusActive:
		return activeColor.Sprint("[active]")
	default:
		return pendingColor.Sprint("[pending]")
	}
}

// Tree prints the behavior tree with box-drawing connectors. Summaries are
// printed under each label when withSummary is set.
func Tree(w io.Writer, root blueprint.Node, withSummary bool) {
	writeNode(w, root, "", "", withSummary)
}

func writeNode(w io.Writer, n blueprint.Node, prefix, connector string, withSummary bool) {
	fmt.Fprintf(w, "%s%s%s %s (%s)\n", prefix, connector, statusMark(n.Status), labelColor.Sprint(n.Label), n.ID)

	childPrefix := prefix
	switch connector {
	case "├── ":
		childPrefix += "│   "
	case "└── ":
		childPrefix += "    "
	}
	if withSummary && strings.TrimSpace(n.Summary) != "" {
		bar := "    "
		if len(n.Children) > 0 {
			bar = "│   "
		}
		fmt.Fprintf(w, "%s%s%s\n", childPrefix, bar, pendingColor.Sprint(n.Summary))
	}
	for i, c := range n.Children {
		next := "├── "
		if i == len(n.Children)-1 {
			next = "└── "
		}
		writeNode(w, c, childPrefix, next, withSummary)
	}
}

// Insight prints one node insight as plain sections.
func Insight(w io.Writer, v blueprint.InsightView) {
	fmt.Fprintf(w, "%s (%s / %s)\n", labelColor.Sprint(v.Title), v.ModelName, v.NodeID)
	if v.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", v.Summary)
	}
	if len(v.KeyPoints) > 0 {
		fmt.Fprintln(w)
		for _, kp := range v.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", kp)
		}
	}
	if v.KnowledgeTrace != "" {
		fmt.Fprintf(w, "\nTrace: %s\n", v.KnowledgeTrace)
	}
}
