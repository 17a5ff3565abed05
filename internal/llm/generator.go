package llm

import (
	"context"
	"fmt"
	"strings"

	"supportviz/internal/blueprint"
	"supportviz/internal/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "supportviz/llm"

// BlueprintResult is one generation. Blueprint is the decoded JSON value and
// has not been shape-checked.
type BlueprintResult struct {
	Blueprint  any
	Scenario   *catalog.Scenario
	Score      float64
	RawContent string
	// Shortcut is set when the scenario exemplar was returned without a
	// model call.
	Shortcut bool
}

type Classification struct {
	ModelName  string `json:"model_name"`
	Reason     string `json:"reason"`
	RawContent string `json:"raw_content"`
}

// BlueprintGenerator produces a raw blueprint for a task.
type BlueprintGenerator interface {
	GenerateBlueprint(ctx context.Context, modelName, task string) (*BlueprintResult, error)
}

// Generator grounds model calls in the scenario catalogue.
type Generator struct {
	catalog           *catalog.Catalog
	completer         ChatCompleter
	prompts           PromptBuilder
	shortcutThreshold float64
}

type GeneratorOption func(*Generator)

// WithShortcutThreshold returns the matched scenario's exemplar directly when
// its similarity reaches t. Zero disables the shortcut.
func WithShortcutThreshold(t float64) GeneratorOption {
	return func(g *Generator) { g.shortcutThreshold = t }
}

func NewGenerator(cat *catalog.Catalog, completer ChatCompleter, opts ...GeneratorOption) *Generator {
	g := &Generator{catalog: cat, completer: completer}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateBlueprint matches the task against the model's scenarios, prompts
// the model with the best match as a one-shot example and parses the reply.
// Configuration, transport and parse errors are returned unchanged; nothing
// is retried.
func (g *Generator) GenerateBlueprint(ctx context.Context, modelName, task string) (*BlueprintResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.GenerateBlueprint",
		trace.WithAttributes(attribute.String("model_name", modelName)),
	)
	defer span.End()

	scenario, score := g.catalog.FindBestScenario(modelName, task)
	res := &BlueprintResult{Scenario: scenario, Score: score}
	if scenario != nil {
		span.SetAttributes(
			attribute.String("scenario_id", scenario.ID),
			attribute.Float64("scenario_score", score),
		)
	}

	if g.shortcutThreshold > 0 && scenario != nil && scenario.ExampleOutput != nil && score >= g.shortcutThreshold {
		v, err := blueprint.ToValue(*scenario.ExampleOutput)
		if err != nil {
			return nil, err
		}
		res.Blueprint = v
		res.Shortcut = true
		span.SetAttributes(attribute.Bool("shortcut", true))
		return res, nil
	}

	messages := g.prompts.BuildBlueprintMessages(modelName, task, scenario)
	content, err := g.completer.Complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return nil, err
	}
	res.RawContent = content

	v, err := ExtractJSON(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed output")
		return nil, err
	}
	res.Blueprint = v
	return res, nil
}

// ClassifyModel asks the model which support model should handle task.
// Answers outside the enumeration fall back to the first model.
func (g *Generator) ClassifyModel(ctx context.Context, task string) (*Classification, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.ClassifyModel")
	defer span.End()

	models := g.catalog.Models()
	messages := g.prompts.BuildClassifyMessages(models, g.catalog.Scenarios(), task)
	content, err := g.completer.Complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return nil, err
	}

	v, err := ExtractJSON(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed output")
		return nil, err
	}

	out := &Classification{RawContent: content}
	if obj, ok := v.(map[string]any); ok {
		out.ModelName, _ = obj["model_name"].(string)
		out.Reason, _ = obj["reason"].(string)
	}
	out.ModelName = strings.TrimSpace(out.ModelName)
	if !g.catalog.HasModel(out.ModelName) {
		out.ModelName = models[0]
	}
	span.SetAttributes(attribute.String("model_name", out.ModelName))
	return out, nil
}

func (r *BlueprintResult) String() string {
	if r == nil {
		return "<nil>"
	}
	id := "-"
	if r.Scenario != nil {
		id = r.Scenario.ID
	}
	return fmt.Sprintf("scenario=%s score=%.3f shortcut=%t", id, r.Score, r.Shortcut)
}
