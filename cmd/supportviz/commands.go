package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"supportviz/internal/offroad"
	"supportviz/internal/render"
	"supportviz/internal/server"

	"github.com/spf13/cobra"
)

var (
	modelName  string
	taskText   string
	nodeID     string
	asJSON     bool
	asMermaid  bool
	filterName string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and index page",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		router := server.NewRouter(a.service, a.log)
		return server.Run(ctx, a.cfg.Server.Addr, router, a.log)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the behavior tree for a task and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res := a.service.Update(cmd.Context(), modelName, taskText)
		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, res)
		}
		if asMermaid {
			fmt.Fprint(out, render.TreeFlow(res.BehaviorTree))
			return nil
		}
		fmt.Fprintf(out, "Model: %s (source: %s)\n\n", res.ModelName, res.Source)
		render.Tree(out, res.BehaviorTree, true)
		fmt.Fprintln(out)
		render.Insight(out, res.Insight)
		return nil
	},
}

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Show the insight for one behavior node",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		model := a.catalog.NormalizeModel(modelName)
		view := a.service.ExtractNodeInsight(cmd.Context(), model, nodeID, nil, taskText)
		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, view)
		}
		render.Insight(out, view)
		if asMermaid {
			fmt.Fprintln(out)
			fmt.Fprint(out, render.KnowledgeGraphFlow(view.KnowledgeGraph))
		}
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Extract off-road task facts from free text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeJSON(cmd.OutOrStdout(), offroad.ParseTaskDescription(args[0]))
	},
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the curated scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		scenarios := a.catalog.Scenarios()
		if filterName != "" {
			scenarios = a.catalog.ScenariosFor(filterName)
		}
		out := cmd.OutOrStdout()
		for _, s := range scenarios {
			fmt.Fprintf(out, "%-28s %-22s %s\n", s.ID, s.ModelName, s.Name)
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Ask the LLM which support model fits a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.LLMTimeout())
		defer cancel()
		res, err := a.generator.ClassifyModel(ctx, args[0])
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, insightCmd} {
		c.Flags().StringVarP(&modelName, "model", "m", "", "Support model name (defaults to the first model)")
		c.Flags().StringVarP(&taskText, "task", "t", "", "Task description")
		c.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	}
	insightCmd.Flags().StringVarP(&nodeID, "node", "n", "", "Behavior node id (defaults to the task ingest node)")
	generateCmd.Flags().BoolVar(&asMermaid, "mermaid", false, "Print the behavior tree as a Mermaid block")
	insightCmd.Flags().BoolVar(&asMermaid, "mermaid", false, "Append the knowledge graph as a Mermaid block")
	scenariosCmd.Flags().StringVarP(&filterName, "model", "m", "", "Only list scenarios for this model")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
