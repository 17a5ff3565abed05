package blueprint

import (
	"fmt"
	"strings"
)

// DefaultNodeID is inspected when a caller does not name a node.
const DefaultNodeID = "task_ingest"

// SummaryPlaceholder replaces a blank task description in the root summary.
const SummaryPlaceholder = "Awaiting task description"

// InsightView is the normalised record served for one node.
type InsightView struct {
	NodeID         string          `json:"node_id"`
	ModelName      string          `json:"model_name"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	KeyPoints      []string        `json:"key_points"`
	KnowledgeTrace string          `json:"knowledge_trace"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph"`
}

// DefaultInsight is served for node ids that have no insight of their own.
func DefaultInsight() Insight {
	return Insight{
		Title:   "Strategy node",
		Summary: "No dedicated description is configured for this node; showing the generic support reasoning.",
		KeyPoints: []string{
			"Follow the support model's standard reasoning path",
			"Trace the evidence chain back through the knowledge graph",
			"Emit a visual behavior node",
		},
		KnowledgeTrace: "Default knowledge chain: task node -> reasoning logic -> result node.",
		KnowledgeGraph: &KnowledgeGraph{
			Nodes: []GraphNode{
				{ID: "task_node", Label: "Task node", Type: GraphInput},
				{ID: "logic_node", Label: "Reasoning logic", Type: GraphProcess},
				{ID: "result_node", Label: "Result node", Type: GraphOutput},
			},
			Edges: []GraphEdge{
				{Source: "task_node", Target: "logic_node"},
				{Source: "logic_node", Target: "result_node"},
			},
		},
	}
}

// View looks up nodeID in b (falling back to DefaultInsight) and fills the
// normalised record. An empty title becomes the node id.
func (b Blueprint) View(modelName, nodeID string) InsightView {
	in, ok := b.Insight(nodeID)
	if !ok {
		in = DefaultInsight()
	}
	title := in.Title
	if title == "" {
		title = nodeID
	}
	keyPoints := in.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	return InsightView{
		NodeID:         nodeID,
		ModelName:      modelName,
		Title:          title,
		Summary:        in.Summary,
		KeyPoints:      keyPoints,
		KnowledgeTrace: in.KnowledgeTrace,
		KnowledgeGraph: in.KnowledgeGraph,
	}
}

// InjectSummary returns a copy of the tree whose root summary states the
// parsed task description.
func InjectSummary(tree Node, taskDescription string) Node {
	out := tree.Clone()
	description := strings.TrimSpace(taskDescription)
	if description == "" {
		description = SummaryPlaceholder
	}
	if root := out.Find(out.ID); root != nil {
		root.Summary = fmt.Sprintf("Parsed task description: %s", description)
	}
	return out
}
