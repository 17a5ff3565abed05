package llm

import (
	"fmt"
	"strings"

	"supportviz/internal/catalog"
)

// PromptBuilder assembles the chat messages sent to the model.
type PromptBuilder struct{}

const blueprintContract = `You are the reasoning backend of a support-model visualisation system. Build a behavior tree blueprint for the task.
Output strict JSON with these keys:
  - default_focus: string, id of the node to open first
  - behavior_tree: object with id, label, status, summary, children
  - node_insights: object keyed by node id, each value {title, summary, key_points, knowledge_trace, optional knowledge_graph}
status must be one of "pending", "active", "completed".
Write labels and summaries in English and include concrete numbers (counts, distances, hours) where the task allows.
Mark 1 to 3 decision nodes and give each of them a knowledge_graph of {nodes:[{id,label,type}], edges:[{source,target}]} with type in input, process, decision, output.
`

const offroadHint = `For off-road logistics, reason in this order: parse destination, cargo, time limit and road conditions; assess route risk; choose vehicle type and count; split the load; plan execution. Put the fleet decision in a node with id "fleet_formation" and focus it.
`

// BuildBlueprintMessages returns the system and user messages for a
// blueprint request. scenario may be nil.
func (pb *PromptBuilder) BuildBlueprintMessages(modelName, task string, scenario *catalog.Scenario) []Message {
	var sys strings.Builder
	sys.WriteString(blueprintContract)
	switch {
	case scenario != nil && strings.TrimSpace(scenario.Prompt) != "":
		sys.WriteString("\n")
		sys.WriteString(strings.TrimSpace(scenario.Prompt))
		sys.WriteString("\n")
	case modelName == catalog.ModelOffroadLogistics:
		sys.WriteString("\n")
		sys.WriteString(offroadHint)
	}

	var user strings.Builder
	if scenario != nil {
		fmt.Fprintf(&user, "Support model: %s\n", modelName)
		fmt.Fprintf(&user, "Matched scenario: %s - %s\n", scenario.ID, scenario.Name)
		fmt.Fprintf(&user, "Scenario example (one-shot): %s\n", scenario.ExampleInput)
		fmt.Fprintf(&user, "Scenario reasoning chain: %s\n", scenario.ReasoningChain)
		user.WriteString("Follow this reasoning chain when ordering the tree nodes and writing each insight's summary and key_points.\n")
	}
	if strings.TrimSpace(task) == "" {
		task = "(empty)"
	}
	fmt.Fprintf(&user, "The actual task description is: %s\n", task)
	user.WriteString("First parse the task (destination, objects, time and safety constraints), then build a clear behavior tree and its node insights.\n")
	user.WriteString("Output exactly one JSON object. No explanations, no Markdown fences.")

	return []Message{
		{Role: RoleSystem, Content: sys.String()},
		{Role: RoleUser, Content: user.String()},
	}
}

// BuildClassifyMessages asks the model to pick one model name, using every
// scenario in the catalogue as a labelled example.
func (pb *PromptBuilder) BuildClassifyMessages(models []string, scenarios []catalog.Scenario, task string) []Message {
	var sys strings.Builder
	sys.WriteString("You route support tasks to the support model that should plan them.\n")
	fmt.Fprintf(&sys, "Allowed model_name values: %s\n", strings.Join(models, ", "))
	sys.WriteString(`Output strict JSON: {"model_name": "<one allowed value>", "reason": "<one sentence>"}` + "\n")
	sys.WriteString("\nLabelled examples:\n")
	for _, s := range scenarios {
		fmt.Fprintf(&sys, "- [%s] %s\n", s.ModelName, s.ExampleInput)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Task description: %s\n", strings.TrimSpace(task))
	user.WriteString("Output exactly one JSON object. No explanations, no Markdown fences.")

	return []Message{
		{Role: RoleSystem, Content: sys.String()},
		{Role: RoleUser, Content: user.String()},
	}
}
