package pipeline

import (
	"context"
	"strings"

	"supportviz/internal/blueprint"
	"supportviz/internal/catalog"
	"supportviz/internal/llm"
	"supportviz/internal/logger"
	"supportviz/internal/offroad"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "supportviz/pipeline"

// Source records which stage produced a resolved blueprint.
type Source string

const (
	SourceStatic    Source = "static"
	SourceRuleBased Source = "rule_based"
	SourceLLM       Source = "llm"
)

type Options struct {
	LLMEnabled bool
	Logger     *logger.Logger
}

// Service turns (model, task) into a behavior tree and node insights. Every
// call reaches a result: failed LLM overrides fall back to the previous
// stage's blueprint.
type Service struct {
	catalog    *catalog.Catalog
	generator  llm.BlueprintGenerator
	llmEnabled bool
	log        *logger.Logger
}

// NewService wires the stages. generator may be nil, which disables the LLM
// stage regardless of opts.
func NewService(cat *catalog.Catalog, generator llm.BlueprintGenerator, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:    cat,
		generator:  generator,
		llmEnabled: opts.LLMEnabled && generator != nil,
		log:        log,
	}
}

type UpdateResult struct {
	ModelName       string                `json:"model_name"`
	TaskDescription string                `json:"task_description"`
	BehaviorTree    blueprint.Node        `json:"behavior_tree"`
	Insight         blueprint.InsightView `json:"insight"`
	DefaultNodeID   string                `json:"default_node_id"`
	Source          Source                `json:"source"`
}

// ResolveBlueprint runs the generation stages over base in order:
// rule-based for the off-road model, then the LLM override.
func (s *Service) ResolveBlueprint(ctx context.Context, modelName, task string, base blueprint.Blueprint) (blueprint.Blueprint, Source) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.ResolveBlueprint",
		trace.WithAttributes(attribute.String("model_name", modelName)),
	)
	defer span.End()

	bp, src := base, SourceStatic
	if strings.TrimSpace(task) == "" {
		return bp, src
	}

	if modelName == catalog.ModelOffroadLogistics {
		bp, src = s.ruleBasedStage(task), SourceRuleBased
	}

	if s.llmEnabled {
		generated, err := s.llmStage(ctx, modelName, task)
		if err != nil {
			ge := classify(err)
			span.SetAttributes(attribute.String("llm.fallback", string(ge.Kind)))
			s.log.Warn("llm override discarded, keeping previous blueprint",
				"model_name", modelName,
				"kind", string(ge.Kind),
				"fallback_source", string(src),
				"error", ge.Err,
			)
		} else {
			bp, src = generated, SourceLLM
		}
	}

	span.SetAttributes(attribute.String("source", string(src)))
	return bp, src
}

func (s *Service) ruleBasedStage(task string) blueprint.Blueprint {
	return offroad.GenerateBlueprint(task)
}

func (s *Service) llmStage(ctx context.Context, modelName, task string) (blueprint.Blueprint, error) {
	res, err := s.generator.GenerateBlueprint(ctx, modelName, task)
	if err != nil {
		return blueprint.Blueprint{}, err
	}
	decoded, err := blueprint.Decode(res.Blueprint)
	if err != nil {
		return blueprint.Blueprint{}, &GenerationError{Kind: KindSchema, Err: err}
	}
	s.log.Debug("llm blueprint accepted", "model_name", modelName, "result", res.String())
	return *decoded, nil
}

// BuildBehaviorTree resolves bp for the task and returns a copy of its tree
// whose root summary states the task.
func (s *Service) BuildBehaviorTree(ctx context.Context, bp blueprint.Blueprint, task, modelName string) blueprint.Node {
	resolved, _ := s.ResolveBlueprint(ctx, modelName, task, bp)
	return blueprint.InjectSummary(resolved.BehaviorTree, task)
}

// ExtractNodeInsight returns the insight for nodeID. An empty nodeID means
// the task ingest node; a nil bp means the model's static blueprint.
func (s *Service) ExtractNodeInsight(ctx context.Context, modelName, nodeID string, bp *blueprint.Blueprint, task string) blueprint.InsightView {
	if nodeID == "" {
		nodeID = blueprint.DefaultNodeID
	}
	var base blueprint.Blueprint
	if bp != nil {
		base = bp.Clone()
	} else {
		base = s.catalog.Blueprint(modelName)
	}
	resolved, _ := s.ResolveBlueprint(ctx, modelName, task, base)
	return resolved.View(modelName, nodeID)
}

// Update serves a full refresh: the tree, the node to focus and its insight,
// all from one resolved blueprint.
func (s *Service) Update(ctx context.Context, modelName, task string) UpdateResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.Update")
	defer span.End()

	modelName = s.catalog.NormalizeModel(modelName)
	task = strings.TrimSpace(task)

	resolved, src := s.ResolveBlueprint(ctx, modelName, task, s.catalog.Blueprint(modelName))
	focus := resolved.DefaultFocus
	if focus == "" {
		focus = resolved.BehaviorTree.ID
	}

	s.log.Info("behavior tree updated", "model_name", modelName, "source", string(src), "focus", focus)
	return UpdateResult{
		ModelName:       modelName,
		TaskDescription: task,
		BehaviorTree:    blueprint.InjectSummary(resolved.BehaviorTree, task),
		Insight:         resolved.View(modelName, focus),
		DefaultNodeID:   focus,
		Source:          src,
	}
}

// Catalog exposes the read-only corpus the service was built with.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}
