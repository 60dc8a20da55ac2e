// Package pipeline drives the builder stages: requirements gathering, OCPM
// generation and validation of the generated folder.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ashutoshrp06/ocpm-builder/internal/agent"
	"github.com/ashutoshrp06/ocpm-builder/internal/config"
	"github.com/ashutoshrp06/ocpm-builder/internal/functions"
	"github.com/ashutoshrp06/ocpm-builder/internal/llm"
	"github.com/ashutoshrp06/ocpm-builder/internal/tools"
	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/ashutoshrp06/ocpm-builder/internal/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage selects which part of the pipeline to run.
type Stage int

const (
	StageAll          Stage = 0
	StageRequirements Stage = 1
	StageBuilder      Stage = 2
)

const (
	labelRequirements = "Stage 1"
	labelBuilder      = "Stage 2"
	labelValidation   = "Validation"
)

// ErrNoRequirements is returned when the builder stage finds no requirements
// document to work from.
var ErrNoRequirements = errors.New("no requirements document found")

// Pipeline runs stages against one configuration and provider.
type Pipeline struct {
	cfg      *config.Config
	provider llm.Provider
	catalog  *functions.Registry
	prompts  *validator.PromptValidator
	tracer   *ui.Tracer
	logger   *zap.Logger
}

// Options configures a Pipeline. Provider may be nil when only Validate is
// used.
type Options struct {
	Config   *config.Config
	Provider llm.Provider
	Catalog  *functions.Registry
	Tracer   *ui.Tracer
	Logger   *zap.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if opts.Catalog == nil {
		catalog, err := functions.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load tool catalog: %w", err)
		}
		opts.Catalog = catalog
	}
	if opts.Tracer == nil {
		opts.Tracer = ui.NewTracer(io.Discard, ui.PlainStyles())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Pipeline{
		cfg:      opts.Config,
		provider: opts.Provider,
		catalog:  opts.Catalog,
		prompts:  validator.NewPromptValidator(),
		tracer:   opts.Tracer,
		logger:   opts.Logger,
	}, nil
}

// Run executes the selected stage(s). The full pipeline and the builder
// stage finish with validation; the returned bool is the validation outcome
// and is true when validation did not run.
func (p *Pipeline) Run(ctx context.Context, stage Stage, requirementsPath string) (bool, error) {
	switch stage {
	case StageRequirements:
		_, err := p.RunRequirements(ctx)
		return true, err

	case StageBuilder:
		if _, err := p.RunBuilder(ctx, requirementsPath); err != nil {
			return false, err
		}
		return p.Validate().Valid, nil

	case StageAll:
		if _, err := p.RunRequirements(ctx); err != nil {
			return false, err
		}
		p.tracer.Blank()
		if _, err := p.RunBuilder(ctx, requirementsPath); err != nil {
			return false, err
		}
		p.tracer.Blank()
		return p.Validate().Valid, nil

	default:
		return false, fmt.Errorf("unknown stage %d (expected 1 or 2)", stage)
	}
}

// RunRequirements reads the project inputs and writes the requirements
// document.
func (p *Pipeline) RunRequirements(ctx context.Context) (agent.Result, error) {
	p.tracer.Log(labelRequirements, "Starting Requirements Gathering...")

	initial := "Scan the project input files folder, read all files, and generate " +
		"the OCPM requirements document as specified in your instructions. " +
		"Use the scan_inputs tool to discover files, read_file to read them, " +
		fmt.Sprintf("and write_file to save the output Markdown to the Output/%s/ folder.",
			p.cfg.Paths.ModuleOutputs.Requirements)

	result, err := p.runStage(ctx, labelRequirements, p.cfg.Paths.Prompts.Requirements,
		p.cfg.Paths.RequirementsOutput(), initial)
	if err != nil {
		return result, err
	}

	p.tracer.Log(labelRequirements, "Requirements Gathering complete.")
	return result, nil
}

// RunBuilder generates the OCPM JSON files from a requirements document.
// An empty requirementsPath selects the first Markdown file of the
// requirements output folder.
func (p *Pipeline) RunBuilder(ctx context.Context, requirementsPath string) (agent.Result, error) {
	p.tracer.Log(labelBuilder, "Starting OCPM Builder...")

	if requirementsPath == "" {
		found, err := FindRequirements(p.cfg.Paths.RequirementsOutput())
		if err != nil {
			p.tracer.Error(labelBuilder, fmt.Sprintf("ERROR: No requirements .md file found in Output/%s/. Run Stage 1 first.",
				p.cfg.Paths.ModuleOutputs.Requirements))
			return agent.Result{}, err
		}
		requirementsPath = found
	}

	p.tracer.Log(labelBuilder, "Using requirements: "+filepath.Base(requirementsPath))
	data, err := os.ReadFile(requirementsPath)
	if err != nil {
		return agent.Result{}, fmt.Errorf("failed to read requirements %s: %w", requirementsPath, err)
	}

	out := p.cfg.Paths.ModuleOutputs.Builder
	initial := "Here is the OCPM requirements specification:\n\n" +
		"---\n" + string(data) + "\n---\n\n" +
		"Generate all OCPM JSON configuration files as specified in your instructions. " +
		fmt.Sprintf("Use write_file to save each file to the Output/%s/ folder. ", out) +
		"Use list_template_folders and read_template_file to reference the template " +
		"structure when needed. After generating all files, call validate_output " +
		"to verify correctness."

	result, err := p.runStage(ctx, labelBuilder, p.cfg.Paths.Prompts.Builder,
		p.cfg.Paths.BuilderOutput(), initial)
	if err != nil {
		return result, err
	}

	p.tracer.Log(labelBuilder, "OCPM Builder complete.")
	return result, nil
}

// Validate checks the builder output against the template and prints the
// report.
func (p *Pipeline) Validate() validator.Report {
	p.tracer.Log(labelValidation, "Validating output against template...")
	report := validator.Validate(p.cfg.Paths.BuilderOutput(), p.cfg.Paths.Template)
	ui.PrintReport(p.tracer, labelValidation, report)

	p.logger.Info("Validation finished",
		zap.Bool("valid", report.Valid),
		zap.Int("errors", report.Summary.ErrorsFound),
		zap.Int("warnings", report.Summary.WarningsFound))
	return report
}

// runStage wires a fresh sandbox, tool set and loop for one stage.
func (p *Pipeline) runStage(ctx context.Context, label, promptPath, outputRoot, initial string) (agent.Result, error) {
	if p.provider == nil {
		return agent.Result{}, errors.New("pipeline: provider is required to run a stage")
	}

	logger := p.logger.With(
		zap.String("stage", label),
		zap.String("run_id", uuid.NewString()))

	systemPrompt, err := p.prompts.Load(promptPath)
	if err != nil {
		return agent.Result{}, fmt.Errorf("%s: %w", label, err)
	}

	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return agent.Result{}, fmt.Errorf("failed to create output folder: %w", err)
	}

	roots := tools.Roots{
		Input:    p.cfg.Paths.InputFiles,
		Template: p.cfg.Paths.Template,
		Output:   outputRoot,
	}
	registry, err := tools.NewStageRegistry(roots, p.catalog, logger)
	if err != nil {
		return agent.Result{}, err
	}

	loop, err := agent.New(agent.Config{
		Provider:      p.provider,
		Dispatcher:    tools.NewExecutor(registry, logger),
		Observer:      p.tracer,
		MaxIterations: p.cfg.Agent.MaxIterations,
		Logger:        logger,
	})
	if err != nil {
		return agent.Result{}, err
	}

	logger.Info("Stage started", zap.String("output", outputRoot))
	result, err := loop.Run(ctx, agent.Request{
		Stage:          label,
		SystemPrompt:   systemPrompt,
		InitialMessage: initial,
		Tools:          p.catalog.Definitions(),
	})
	if err != nil {
		return result, err
	}

	logger.Info("Stage finished",
		zap.Int("iterations", result.Iterations),
		zap.Bool("incomplete", result.Incomplete))
	return result, nil
}

// FindRequirements returns the first Markdown file, by name, in dir.
func FindRequirements(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ".md" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoRequirements, dir)
	}

	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
