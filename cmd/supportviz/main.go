package main

import (
	"context"
	"fmt"
	"os"

	"supportviz/internal/catalog"
	"supportviz/internal/config"
	"supportviz/internal/llm"
	"supportviz/internal/logger"
	"supportviz/internal/pipeline"
	"supportviz/internal/telemetry"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:           "supportviz",
		Short:         "Support behavior tree generator and visualiser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(classifyCmd)
}

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	catalog   *catalog.Catalog
	generator *llm.Generator
	service   *pipeline.Service
	shutdown  func(context.Context) error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		log = logger.Stderr()
		log.Warn("logger init failed, using stderr", "error", err)
	}

	shutdown := telemetry.Init(ctx, log, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: "supportviz",
		Version:     version,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	completer := llm.LazyFromOptions(llm.Options{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLMTimeout(),
	})
	gen := llm.NewGenerator(cat, completer, llm.WithShortcutThreshold(cfg.LLM.ShortcutThreshold))

	svc := pipeline.NewService(cat, llm.NewCachingGenerator(gen, cfg.CacheTTL()), pipeline.Options{
		LLMEnabled: cfg.LLM.Enabled,
		Logger:     log,
	})

	log.Debug("components initialised",
		"llm_enabled", cfg.LLM.Enabled,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"api_key", cfg.LLM.APIKey,
	)

	return &app{
		cfg:       cfg,
		log:       log,
		catalog:   cat,
		generator: gen,
		service:   svc,
		shutdown:  shutdown,
	}, nil
}

func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.log.Warn("telemetry shutdown failed", "error", err)
	}
	a.log.Sync()
}
