package blueprint

// Status is the display state of a behavior tree node.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// GraphNodeType describes the role of a node in an insight's knowledge graph.
// It is descriptive metadata, not a state.
type GraphNodeType string

const (
	GraphInput    GraphNodeType = "input"
	GraphProcess  GraphNodeType = "process"
	GraphDecision GraphNodeType = "decision"
	GraphOutput   GraphNodeType = "output"
)

// Node is one step of the reasoning tree. Identity is by ID only.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Status   Status `json:"status" yaml:"status"`
	Summary  string `json:"summary" yaml:"summary"`
	Children []Node `json:"children" yaml:"children"`
}

type GraphNode struct {
	ID    string        `json:"id" yaml:"id"`
	Label string        `json:"label" yaml:"label"`
	Type  GraphNodeType `json:"type" yaml:"type"`
}

type GraphEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// KnowledgeGraph is the small provenance DAG attached to an insight.
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes" yaml:"nodes"`
	Edges []GraphEdge `json:"edges" yaml:"edges"`
}

// Insight is the detail panel content for a single node id.
type Insight struct {
	Title          string          `json:"title" yaml:"title"`
	Summary        string          `json:"summary" yaml:"summary"`
	KeyPoints      []string        `json:"key_points" yaml:"key_points"`
	KnowledgeTrace string          `json:"knowledge_trace" yaml:"knowledge_trace"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty" yaml:"knowledge_graph,omitempty"`
}

// Blueprint is a behavior tree plus its insight table.
type Blueprint struct {
	DefaultFocus string             `json:"default_focus" yaml:"default_focus"`
	BehaviorTree Node               `json:"behavior_tree" yaml:"behavior_tree"`
	NodeInsights map[string]Insight `json:"node_insights" yaml:"node_insights"`
}

// Clone returns a deep copy of the subtree rooted at n.
func (n Node) Clone() Node {
	out := n
	out.Children = make([]Node, len(n.Children))
	for i, c := range n.Children {
		out.Children[i] = c.Clone()
	}
	return out
}

// Find returns the first node with the given id in pre-order, or nil.
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for i := range n.Children {
		if found := n.Children[i].Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node in pre-order. Returning false stops descent into
// that node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for i := range n.Children {
		n.Children[i].walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, int) bool {
		total++
		return true
	})
	return total
}

func (g *KnowledgeGraph) Clone() *KnowledgeGraph {
	if g == nil {
		return nil
	}
	return &KnowledgeGraph{
		Nodes: append([]GraphNode{}, g.Nodes...),
		Edges: append([]GraphEdge{}, g.Edges...),
	}
}

func (in Insight) Clone() Insight {
	out := in
	out.KeyPoints = append([]string{}, in.KeyPoints...)
	out.KnowledgeGraph = in.KnowledgeGraph.Clone()
	return out
}

// Clone returns a Blueprint sharing no mutable state with b.
func (b Blueprint) Clone() Blueprint {
	out := Blueprint{
		DefaultFocus: b.DefaultFocus,
		BehaviorTree: b.BehaviorTree.Clone(),
		NodeInsights: make(map[string]Insight, len(b.NodeInsights)),
	}
	for id, in := range b.NodeInsights {
		out.NodeInsights[id] = in.Clone()
	}
	return out
}

// Insight looks up the insight for id. Missing ids are not an error.
func (b Blueprint) Insight(id string) (Insight, bool) {
	in, ok := b.NodeInsights[id]
	if !ok {
		return Insight{}, false
	}
	return in.Clone(), true
}

// Normalize replaces nil slices and maps with empty ones and fills missing
// statuses, so the blueprint serialises the same way regardless of origin.
func (b *Blueprint) Normalize() {
	b.BehaviorTree.Walk(func(n *Node, _ int) bool {
		if n.Children == nil {
			n.Children = []Node{}
		}
		if n.Status == "" {
			n.Status = StatusPending
		}
		return true
	})
	if b.NodeInsights == nil {
		b.NodeInsights = map[string]Insight{}
	}
	for id, in := range b.NodeInsights {
		if in.KeyPoints == nil {
			in.KeyPoints = []string{}
		}
		if g := in.KnowledgeGraph; g != nil {
			if g.Nodes == nil {
				g.Nodes = []GraphNode{}
			}
			if g.Edges == nil {
				g.Edges = []GraphEdge{}
			}
		}
		b.NodeInsights[id] = in
	}
	if b.DefaultFocus == "" {
		b.DefaultFocus = b.BehaviorTree.ID
	}
}
