package offroad

import (
	"fmt"
	"strings"

	"supportviz/internal/blueprint"
)

const (
	VehicleType  = "medium off-road UGV"
	VehicleCount = 2

	// FocusNode is the node the dynamic blueprint opens on.
	FocusNode = "fleet_formation"
)

// plan holds the facts with display defaults filled in, plus the derived
// fleet decisions. The tree and the insights both render from it.
type plan struct {
	facts       Facts
	destination string
	cargo       string
	timeLimit   string
	roads       string
	leadRoad    string
	loading     string
}

func newPlan(text string) plan {
	f := ParseTaskDescription(text)
	p := plan{
		facts:       f,
		destination: orDefault(f.Destination, "the target location"),
		cargo:       orDefault(f.Cargo, "supplies"),
		timeLimit:   orDefault(f.TimeLimit, "on schedule"),
		roads:       "complex road conditions",
		leadRoad:    "complex road conditions",
	}
	if len(f.RoadConditions) > 0 {
		p.roads = strings.Join(f.RoadConditions, ", ")
		p.leadRoad = f.RoadConditions[0]
	}
	p.loading = fmt.Sprintf("vehicle 1 carries 60%% of the %s, vehicle 2 carries 40%% as redundant backup", p.cargo)
	return p
}

func (p plan) within() string {
	if p.facts.TimeLimit == "" {
		return "on schedule"
	}
	return "within " + p.facts.TimeLimit
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func leaf(id, label string, status blueprint.Status, summary string) blueprint.Node {
	return blueprint.Node{ID: id, Label: label, Status: status, Summary: summary, Children: []blueprint.Node{}}
}

// GenerateBehaviorTree builds the fleet-formation tree for an off-road
// transport task.
func GenerateBehaviorTree(text string) blueprint.Node {
	return newPlan(text).tree()
}

func (p plan) tree() blueprint.Node {
	fleet := fmt.Sprintf("%d x %s", VehicleCount, VehicleType)
	return blueprint.Node{
		ID:      "task_analysis",
		Label:   fmt.Sprintf("Fleet plan: %s carrying %s", fleet, p.cargo),
		Status:  blueprint.StatusCompleted,
		Summary: fmt.Sprintf("Use %s; %s; deliver to %s %s.", fleet, p.loading, p.destination, p.within()),
		Children: []blueprint.Node{
			{
				ID:      "route_analysis",
				Label:   "Route risk assessment",
				Status:  blueprint.StatusCompleted,
				Summary: "Assess road conditions: " + p.roads,
				Children: []blueprint.Node{
					leaf("terrain_scan", "Terrain scan", blueprint.StatusCompleted, "Scan terrain features and obstacles."),
					leaf("risk_assessment", "Risk assessment", blueprint.StatusCompleted, "Assess passage risk and safety margin."),
				},
			},
			{
				ID:      FocusNode,
				Label:   "Fleet result: " + fleet,
				Status:  blueprint.StatusActive,
				Summary: fmt.Sprintf("Best plan: %s carrying %s %s over %s; %s.", fleet, p.cargo, p.within(), p.roads, p.loading),
				Children: []blueprint.Node{
					leaf("vehicle_selection", "Vehicle type: "+VehicleType, blueprint.StatusCompleted,
						fmt.Sprintf("Selected %s: payload and terrain capability fit %s.", VehicleType, p.leadRoad)),
					leaf("quantity_calculation", fmt.Sprintf("Vehicle count: %d", VehicleCount), blueprint.StatusCompleted,
						fmt.Sprintf("50kg payload per vehicle, about 80kg of %s and 20%% redundancy require %d vehicles.", p.cargo, VehicleCount)),
					leaf("loading_plan", "Loading plan: 60/40 split", blueprint.StatusCompleted,
						fmt.Sprintf("Loading: %s, keeping weight balanced and cargo secured.", p.loading)),
				},
			},
			{
				ID:      "execution_plan",
				Label:   "Execution plan",
				Status:  blueprint.StatusPending,
				Summary: fmt.Sprintf("Draw up the detailed transport schedule and finish %s.", p.within()),
				Children: []blueprint.Node{
					leaf("route_optimization", "Route optimisation", blueprint.StatusPending, "Optimise the driving route around high-risk areas."),
					leaf("schedule_arrangement", "Schedule arrangement", blueprint.StatusPending,
						fmt.Sprintf("Set departure times so the fleet arrives %s.", p.within())),
				},
			},
		},
	}
}

// GenerateBlueprint builds the complete dynamic blueprint: the fleet tree,
// an insight for every tree node, and facts-conditioned insights for the
// environment_scan, resource_match and plan_output nodes.
func GenerateBlueprint(text string) blueprint.Blueprint {
	p := newPlan(text)
	bp := blueprint.Blueprint{
		DefaultFocus: FocusNode,
		BehaviorTree: p.tree(),
		NodeInsights: p.treeInsights(),
	}
	for id, in := range p.overrideInsights() {
		bp.NodeInsights[id] = in
	}
	bp.Normalize()
	return bp
}

func (p plan) treeInsights() map[string]blueprint.Insight {
	fleet := fmt.Sprintf("%d x %s", VehicleCount, VehicleType)
	return map[string]blueprint.Insight{
		"task_analysis": {
			Title:   "Task analysis and planning",
			Summary: fmt.Sprintf("Transport %s to %s over %s and finish %s.", p.cargo, p.destination, p.roads, p.within()),
			KeyPoints: []string{
				"Task goal: what the transport must achieve",
				"Constraints: time, road conditions and safety limits",
				"Resource needs: vehicle and equipment types",
			},
			KnowledgeTrace: fmt.Sprintf("Task parsing (transport, %s, %s, %s) -> overall plan.", p.cargo, p.timeLimit, p.roads),
		},
		"route_analysis": {
			Title:   "Route risk assessment",
			Summary: fmt.Sprintf("Full risk assessment of the route with attention to %s.", p.roads),
			KeyPoints: []string{
				"Terrain: slope, soil and trafficability",
				"Risk points: obstacles and hazardous zones",
				"Safety margin: passage probability and fallback routes",
			},
			KnowledgeTrace: "Route analysis -> risk assessment -> safety strategy.",
		},
		"terrain_scan": {
			Title:   "Terrain scan",
			Summary: "Scan terrain features with sensors and map data.",
			KeyPoints: []string{
				"Data capture: satellite imagery and onboard sensors",
				"Feature extraction: slope, soil type and vegetation",
				"Trafficability per vehicle type",
			},
			KnowledgeTrace: "Terrain data -> feature extraction -> trafficability.",
		},
		"risk_assessment": {
			Title:   "Risk assessment",
			Summary: fmt.Sprintf("Combined road risk with attention to %s.", p.roads),
			KeyPoints: []string{
				"Risk factors: bogging, rollover and delay",
				"Probability from history and current conditions",
				"Mitigation: backup routes and technical support",
			},
			KnowledgeTrace: "Risk identification -> probability -> response strategy.",
		},
		FocusNode: {
			Title:   "Fleet formation result",
			Summary: fmt.Sprintf("Final plan: %s carrying %s; %s; finish %s.", fleet, p.cargo, p.loading, p.within()),
			KeyPoints: []string{
				fmt.Sprintf("Goal: transport %s to %s", p.cargo, p.destination),
				"Time limit: " + p.timeLimit,
				"Road conditions: " + p.roads,
				fmt.Sprintf("Vehicle: %s (50kg payload, off-road capable)", VehicleType),
				fmt.Sprintf("Count: %d (80kg of %s / 50kg per vehicle + 20%% redundancy)", VehicleCount, p.cargo),
				"Loading: " + p.loading,
			},
			KnowledgeTrace: fmt.Sprintf(
				"Task parsing (transport, %s, %s, %s) -> vehicle matching (%s fits %s) -> quantity (%d vehicles from 50kg payload and redundancy) -> loading (%s).",
				p.cargo, p.timeLimit, p.roads, VehicleType, p.leadRoad, VehicleCount, p.loading),
			KnowledgeGraph: &blueprint.KnowledgeGraph{
				Nodes: []blueprint.GraphNode{
					{ID: "task_parsing", Label: fmt.Sprintf("Task parsing (%s -> %s)", p.cargo, p.destination), Type: blueprint.GraphInput},
					{ID: "vehicle_matching", Label: fmt.Sprintf("Vehicle matching (%s)", VehicleType), Type: blueprint.GraphProcess},
					{ID: "quantity_calc", Label: fmt.Sprintf("Quantity (%d vehicles)", VehicleCount), Type: blueprint.GraphProcess},
					{ID: "loading_scheme", Label: "Loading (60/40 split)", Type: blueprint.GraphDecision},
					{ID: "fleet_config", Label: "Final configuration (" + fleet + ")", Type: blueprint.GraphOutput},
				},
				Edges: chain("task_parsing", "vehicle_matching", "quantity_calc", "loading_scheme", "fleet_config"),
			},
		},
		"vehicle_selection": {
			Title:   "Vehicle type selection",
			Summary: fmt.Sprintf("Select the %s: payload and terrain capability match the task.", VehicleType),
			KeyPoints: []string{
				"Payload against cargo weight",
				"Terrain fit: wheeled vs tracked",
				"Reliability: range and maintenance",
			},
			KnowledgeTrace: "Vehicle parameters -> task fit -> best type.",
		},
		"quantity_calculation": {
			Title:   "Quantity calculation",
			Summary: fmt.Sprintf("Payload per vehicle and redundancy require %d vehicles.", VehicleCount),
			KeyPoints: []string{
				"Single vehicle capacity: weight and volume limits",
				"Redundancy: breakdown spare and split loads",
				"Cost against efficiency",
			},
			KnowledgeTrace: "Payload demand -> redundancy -> quantity.",
		},
		"loading_plan": {
			Title:   "Loading plan",
			Summary: fmt.Sprintf("Best allocation of the %s across the fleet.", p.cargo),
			KeyPoints: []string{
				"Weight balance across vehicles",
				"Volume and shape fit",
				"Securing loads against shifting",
			},
			KnowledgeTrace: "Cargo properties -> loading optimisation -> secured configuration.",
		},
		"execution_plan": {
			Title:   "Execution plan",
			Summary: fmt.Sprintf("Detailed transport schedule, finishing %s.", p.within()),
			KeyPoints: []string{
				"Timing: departure and mileage",
				"Coordination: vehicles, crew and support",
				"Contingency: breakdowns and rerouting",
			},
			KnowledgeTrace: "Task requirements -> execution plan -> support measures.",
		},
		"route_optimization": {
			Title:   "Route optimisation",
			Summary: "Optimise the driving route around high-risk areas.",
			KeyPoints: []string{
				"Compare paths by time, distance and safety",
				"Adapt to live road conditions",
				"GPS guidance",
			},
			KnowledgeTrace: "Road network -> risk assessment -> path selection.",
		},
		"schedule_arrangement": {
			Title:   "Schedule arrangement",
			Summary: fmt.Sprintf("Set departure times so the fleet arrives %s.", p.within()),
			KeyPoints: []string{
				"Time budget for the whole trip",
				"Best departure window",
				"Live position tracking",
			},
			KnowledgeTrace: "Time constraint -> trip plan -> schedule.",
		},
	}
}

// overrideInsights are the three insights the static off-road blueprint
// also carries, rewritten from the parsed facts.
func (p plan) overrideInsights() map[string]blueprint.Insight {
	envSummary := "Identify bogs, slopes and rolling resistance and compute passability per vehicle type."
	envPoints := []string{
		"Fuse slope and moisture to judge wheeled vs tracked feasibility",
		"Compare with historical bogging cases to pre-mark high-risk nodes",
		"Hand preferred corridors and backup routes to resource matching",
	}
	if len(p.facts.RoadConditions) > 0 {
		envSummary = fmt.Sprintf("For %s, compute passability per vehicle type.", p.roads)
		envPoints[0] = fmt.Sprintf("For %s, judge wheeled vs tracked feasibility", p.roads)
	}

	resSummary := "Pick transport platforms by payload, ground pressure and power margin, then form the convoy."
	resPoints := []string{
		"Read vehicle status and fuel to drop unfit platforms",
		"Combine tractor and support vehicles into modular echelons",
		"Emit convoy order and supply batches",
	}
	if p.facts.Cargo != "" {
		resSummary = fmt.Sprintf("Pick platforms for transporting %s by payload, ground pressure and power margin.", p.facts.Cargo)
	}
	if p.facts.TimeLimit != "" {
		resPoints[0] = fmt.Sprintf("Respect the %s time limit when reading vehicle status and fuel", p.facts.TimeLimit)
	}

	planPoints := []string{
		"Fix primary and backup routes and push situation updates",
		"Insert en-route resupply and maintenance checkpoints",
		"Emit an order set that imports directly into the dispatch platform",
	}
	if p.facts.TimeLimit != "" {
		planPoints[0] = fmt.Sprintf("Fix primary and backup routes to meet the %s time limit", p.facts.TimeLimit)
	}

	return map[string]blueprint.Insight{
		"environment_scan": {
			Title:          "Environment and threat identification",
			Summary:        envSummary,
			KeyPoints:      envPoints,
			KnowledgeTrace: "Terrain attributes -> passability -> route filtering drive the off-road supply strategy.",
			KnowledgeGraph: &blueprint.KnowledgeGraph{
				Nodes: []blueprint.GraphNode{
					{ID: "terrain_data", Label: "Terrain data", Type: blueprint.GraphInput},
					{ID: "road_analysis", Label: "Road condition analysis", Type: blueprint.GraphProcess},
					{ID: "vehicle_analysis", Label: "Vehicle passability analysis", Type: blueprint.GraphProcess},
					{ID: "route_selection", Label: "Route filtering", Type: blueprint.GraphDecision},
					{ID: "backup_routes", Label: "Backup routes", Type: blueprint.GraphOutput},
				},
				Edges: chain("terrain_data", "road_analysis", "vehicle_analysis", "route_selection", "backup_routes"),
			},
		},
		"resource_match": {
			Title:          "Resource matching",
			Summary:        resSummary,
			KeyPoints:      resPoints,
			KnowledgeTrace: "Vehicle capability is compared with task constraints to produce the convoy configuration.",
			KnowledgeGraph: &blueprint.KnowledgeGraph{
				Nodes: []blueprint.GraphNode{
					{ID: "task_parsing", Label: fmt.Sprintf("Task parsing (%s)", p.destination), Type: blueprint.GraphInput},
					{ID: "vehicle_type_matching", Label: "Vehicle type matching", Type: blueprint.GraphProcess},
					{ID: "quantity_calculation", Label: "Quantity calculation", Type: blueprint.GraphProcess},
					{ID: "loading_scheme", Label: "Loading scheme", Type: blueprint.GraphDecision},
					{ID: "fleet_configuration", Label: "Fleet configuration", Type: blueprint.GraphOutput},
				},
				Edges: chain("task_parsing", "vehicle_type_matching", "quantity_calculation", "loading_scheme", "fleet_configuration"),
			},
		},
		"plan_output": {
			Title:          "Plan output",
			Summary:        "Produce a three-stage script of route binding, echelon dispatch and en-route resupply.",
			KeyPoints:      planPoints,
			KnowledgeTrace: "The off-road strategy tree lands in the fleet dispatch system through the execution interface.",
			KnowledgeGraph: &blueprint.KnowledgeGraph{
				Nodes: []blueprint.GraphNode{
					{ID: "route_planning", Label: "Route planning", Type: blueprint.GraphInput},
					{ID: "schedule_optimization", Label: fmt.Sprintf("Schedule optimisation (%s)", orDefault(p.facts.TimeLimit, "time constraint")), Type: blueprint.GraphProcess},
					{ID: "supply_points", Label: "Supply point placement", Type: blueprint.GraphDecision},
					{ID: "execution_script", Label: "Execution script", Type: blueprint.GraphOutput},
				},
				Edges: chain("route_planning", "schedule_optimization", "supply_points", "execution_script"),
			},
		},
	}
}

func chain(ids ...string) []blueprint.GraphEdge {
	edges := make([]blueprint.GraphEdge, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		edges = append(edges, blueprint.GraphEdge{Source: ids[i-1], Target: ids[i]})
	}
	return edges
}
