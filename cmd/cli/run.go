package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ashutoshrp06/ocpm-builder/internal/llm"
	"github.com/ashutoshrp06/ocpm-builder/internal/pipeline"
	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runStage        int
	runRequirements string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the builder pipeline",
	Long: `Run the builder pipeline.

Without --stage, runs requirements gathering, the OCPM builder and
validation in sequence. Stage 2 picks the first .md file in the
requirements output folder unless --requirements is given.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().IntVar(&runStage, "stage", 0, "Run a specific stage only (1=Requirements Gathering, 2=OCPM Builder)")
	runCmd.Flags().StringVar(&runRequirements, "requirements", "", "Requirements .md file for stage 2 (auto-detected if omitted)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if runStage < 0 || runStage > 2 {
		return fmt.Errorf("invalid --stage %d (choose 1 or 2)", runStage)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := createLogger(cfg.Log.Level)
	defer logger.Sync()

	provider, err := llm.New(cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("llm error: %w", err)
	}

	catalog, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load tool catalog: %w", err)
	}

	styles := ui.DefaultStyles()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Banner(styles, cfg.LLM.Provider, cfg.LLM.Model))
	fmt.Fprintln(out)

	p, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Provider: provider,
		Catalog:  catalog,
		Tracer:   ui.NewTracer(out, styles),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := p.Run(ctx, pipeline.Stage(runStage), runRequirements); err != nil {
		logger.Error("Pipeline failed", zap.Int("stage", runStage), zap.Error(err))
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done.")
	return nil
}
