package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"supportviz/internal/blueprint"

	"gopkg.in/yaml.v3"
)

// ModelOffroadLogistics is the model family served by the rule-based generator.
const ModelOffroadLogistics = "offroad-logistics"

//go:embed data/*.yaml
var dataFS embed.FS

// Scenario is a curated (input, reasoning chain, optional exemplar) triple
// used for one-shot prompting and matching.
type Scenario struct {
	ID             string               `yaml:"id" json:"id"`
	ModelName      string               `yaml:"model_name" json:"model_name"`
	Name           string               `yaml:"name" json:"name"`
	ExampleInput   string               `yaml:"example_input" json:"example_input"`
	ReasoningChain string               `yaml:"reasoning_chain" json:"reasoning_chain"`
	Prompt         string               `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	ExampleOutput  *blueprint.Blueprint `yaml:"example_output,omitempty" json:"example_output,omitempty"`
}

// ModelSpec declares a support model's static blueprint as patches on the
// default template.
type ModelSpec struct {
	Name             string                            `yaml:"name"`
	RootLabel        string                            `yaml:"root_label"`
	RootSummary      string                            `yaml:"root_summary"`
	InsightOverrides map[string]blueprint.InsightPatch `yaml:"insight_overrides"`
}

type modelsFile struct {
	Models []ModelSpec `yaml:"models"`
}

type scenariosFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Catalog is the read-only corpus of models, static blueprints and scenarios.
// It is immutable after Load; accessors hand out copies.
type Catalog struct {
	models     []string
	defaultBP  blueprint.Blueprint
	blueprints map[string]blueprint.Blueprint
	scenarios  []Scenario
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded corpus.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(dataFS)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded corpus as a
// programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads data/default_blueprint.yaml, data/models.yaml and
// data/scenarios.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var base blueprint.Blueprint
	if err := readYAML(fsys, "data/default_blueprint.yaml", &base); err != nil {
		return nil, err
	}
	base.Normalize()
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("default blueprint: %w", err)
	}

	var mf modelsFile
	if err := readYAML(fsys, "data/models.yaml", &mf); err != nil {
		return nil, err
	}
	var sf scenariosFile
	if err := readYAML(fsys, "data/scenarios.yaml", &sf); err != nil {
		return nil, err
	}
	return New(base, mf.Models, sf.Scenarios)
}

// New assembles a catalog from already decoded parts.
func New(base blueprint.Blueprint, models []ModelSpec, scenarios []Scenario) (*Catalog, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("catalog has no models")
	}
	c := &Catalog{
		defaultBP:  base.Clone(),
		blueprints: make(map[string]blueprint.Blueprint, len(models)),
	}
	for _, m := range models {
		if _, dup := c.blueprints[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model %q", m.Name)
		}
		c.models = append(c.models, m.Name)
		c.blueprints[m.Name] = blueprint.BuildGeneric(base, m.RootLabel, m.RootSummary, m.InsightOverrides)
	}
	for _, s := range scenarios {
		if s.ExampleOutput != nil {
			s.ExampleOutput.Normalize()
			if err := s.ExampleOutput.Validate(); err != nil {
				return nil, fmt.Errorf("scenario %s example output: %w", s.ID, err)
			}
		}
		c.scenarios = append(c.scenarios, s)
	}
	return c, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// Models returns the model enumeration in display order.
func (c *Catalog) Models() []string {
	return append([]string{}, c.models...)
}

// HasModel reports whether name is in the enumeration.
func (c *Catalog) HasModel(name string) bool {
	_, ok := c.blueprints[name]
	return ok
}

// NormalizeModel maps unknown names onto the first model.
func (c *Catalog) NormalizeModel(name string) string {
	if c.HasModel(name) {
		return name
	}
	return c.models[0]
}

// Blueprint returns a copy of the static blueprint for model, or of the
// default template when the model is unknown.
func (c *Catalog) Blueprint(model string) blueprint.Blueprint {
	if bp, ok := c.blueprints[model]; ok {
		return bp.Clone()
	}
	return c.defaultBP.Clone()
}

// DefaultBlueprint returns a copy of the generic template.
func (c *Catalog) DefaultBlueprint() blueprint.Blueprint {
	return c.defaultBP.Clone()
}

// Scenarios returns every scenario in catalogue order.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.clone()
	}
	return out
}

// ScenariosFor returns the scenarios of one model in catalogue order.
func (c *Catalog) ScenariosFor(model string) []Scenario {
	var out []Scenario
	for _, s := range c.scenarios {
		if s.ModelName == model {
			out = append(out, s.clone())
		}
	}
	return out
}

// FindBestScenario returns the scenario of model whose example input is most
// similar to query, with its score. The first scenario wins ties. Returns
// (nil, 0) when the model has no scenarios or nothing scores above zero.
func (c *Catalog) FindBestScenario(model, query string) (*Scenario, float64) {
	var best *Scenario
	bestScore := 0.0
	for i := range c.scenarios {
		s := &c.scenarios[i]
		if s.ModelName != model {
			continue
		}
		score := Similarity(query, s.ExampleInput)
		if score > bestScore {
			best = s
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0
	}
	out := best.clone()
	return &out, bestScore
}

func (s Scenario) clone() Scenario {
	if s.ExampleOutput != nil {
		bp := s.ExampleOutput.Clone()
		s.ExampleOutput = &bp
	}
	return s
}
