package blueprint

// InsightPatch carries per-field overrides for an Insight. Nil fields are
// left untouched; a non-nil KeyPoints replaces the whole list.
type InsightPatch struct {
	Title          *string         `json:"title,omitempty" yaml:"title,omitempty"`
	Summary        *string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	KeyPoints      []string        `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	KnowledgeTrace *string         `json:"knowledge_trace,omitempty" yaml:"knowledge_trace,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty" yaml:"knowledge_graph,omitempty"`
}

// Apply returns a copy of in with the patch's set fields overwritten.
func (p InsightPatch) Apply(in Insight) Insight {
	out := in.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}
	if p.KeyPoints != nil {
		out.KeyPoints = append([]string{}, p.KeyPoints...)
	}
	if p.KnowledgeTrace != nil {
		out.KnowledgeTrace = *p.KnowledgeTrace
	}
	if p.KnowledgeGraph != nil {
		out.KnowledgeGraph = p.KnowledgeGraph.Clone()
	}
	return out
}

// BuildGeneric clones base, renames the root when rootLabel/rootSummary are
// non-empty and merges the insight patches. Ids absent from base get a fresh
// empty insight before the patch is applied.
func BuildGeneric(base Blueprint, rootLabel, rootSummary string, overrides map[string]InsightPatch) Blueprint {
	bp := base.Clone()
	if rootLabel != "" {
		bp.BehaviorTree.Label = rootLabel
	}
	if rootSummary != "" {
		bp.BehaviorTree.Summary = rootSummary
	}
	for id, patch := range overrides {
		bp.NodeInsights[id] = patch.Apply(bp.NodeInsights[id])
	}
	bp.Normalize()
	return bp
}

// StringRef is a small helper for building patches in code.
func StringRef(s string) *string { return &s }
