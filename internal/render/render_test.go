package render

import (
	"bytes"
	"strings"
	"testing"

	"supportviz/internal/blueprint"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestKnowledgeGraphFlow(t *testing.T) {
	g := &blueprint.KnowledgeGraph{
		Nodes: []blueprint.GraphNode{
			{ID: "terrain-data", Label: "Terrain data", Type: blueprint.GraphInput},
			{ID: "analysis", Label: `Vehicle "passability"`, Type: blueprint.GraphProcess},
			{ID: "route", Label: "Route filtering", Type: blueprint.GraphDecision},
			{ID: "9backup", Label: "Backup routes", Type: blueprint.GraphOutput},
		},
		Edges: []blueprint.GraphEdge{
			{Source: "terrain-data", Target: "analysis"},
			{Source: "analysis", Target: "route"},
			{Source: "route", Target: "9backup"},
		},
	}

	out := KnowledgeGraphFlow(g)
	assert.True(t, strings.HasPrefix(out, "```mermaid\ngraph TD\n"))
	assert.True(t, strings.HasSuffix(out, "```\n"))
	assert.Contains(t, out, `terrain_data(["Terrain data"])`)
	assert.Contains(t, out, `analysis["Vehicle 'passability'"]`)
	assert.Contains(t, out, `route{"Route filtering"}`)
	assert.Contains(t, out, `n_9backup[["Backup routes"]]`)
	assert.Contains(t, out, "terrain_data --> analysis")
	assert.Contains(t, out, "route --> n_9backup")

	assert.Contains(t, KnowledgeGraphFlow(nil), "No knowledge graph")
}

func TestTreeFlow(t *testing.T) {
	root := blueprint.Node{ID: "root", Label: "Root", Children: []blueprint.Node{
		{ID: "a", Label: "A", Children: []blueprint.Node{{ID: "a1", Label: "A1"}}},
		{ID: "b", Label: "B"},
	}}
	out := TreeFlow(root)
	assert.Contains(t, out, "root --> a\n")
	assert.Contains(t, out, "root --> b\n")
	assert.Contains(t, out, "a --> a1\n")
	assert.Contains(t, out, `a1["A1"]`)
}

func TestTree(t *testing.T) {
	root := blueprint.Node{ID: "root", Label: "Root", Status: blueprint.StatusCompleted, Summary: "top", Children: []blueprint.Node{
		{ID: "a", Label: "A", Status: blueprint.StatusActive, Children: []blueprint.Node{
			{ID: "a1", Label: "A1", Status: blueprint.StatusPending},
		}},
		{ID: "b", Label: "B", Status: blueprint.StatusPending},
	}}

	var buf bytes.Buffer
	Tree(&buf, root, false)
	assert.Equal(t, strings.Join([]string{
		"[done] Root (root)",
		"├── [active] A (a)",
		"│   └── [pending] A1 (a1)",
		"└── [pending] B (b)",
		"",
	}, "\n"), buf.String())

	buf.Reset()
	Tree(&buf, root, true)
	assert.Contains(t, buf.String(), "│   top\n")
}

func TestInsight(t *testing.T) {
	var buf bytes.Buffer
	Insight(&buf, blueprint.InsightView{
		NodeID: "n", ModelName: "m", Title: "T", Summary: "S",
		KeyPoints: []string{"k1", "k2"}, KnowledgeTrace: "a -> b",
	})
	out := buf.String()
	assert.Contains(t, out, "T (m / n)")
	assert.Contains(t, out, "  - k2\n")
	assert.Contains(t, out, "Trace: a -> b")
}
