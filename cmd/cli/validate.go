package main

import (
	"encoding/json"
	"fmt"

	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/ashutoshrp06/ocpm-builder/internal/validator"
	"github.com/spf13/cobra"
)

var (
	validateOutput   string
	validateTemplate string
	validateJSON     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate generated output against the template",
	Long: `Validate the OCPM builder output against the reference template.

No LLM calls are made. Paths default to the configured builder output and
template folders; passing both --output and --template skips the config
file entirely. Exits 1 when the output is invalid.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "Output folder to check (default: configured builder output)")
	validateCmd.Flags().StringVar(&validateTemplate, "template", "", "Template folder (default: configured template)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	outputDir, templateDir := validateOutput, validateTemplate
	if outputDir == "" || templateDir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if outputDir == "" {
			outputDir = cfg.Paths.BuilderOutput()
		}
		if templateDir == "" {
			templateDir = cfg.Paths.Template
		}
	}

	report := validator.Validate(outputDir, templateDir)

	out := cmd.OutOrStdout()
	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		tracer := ui.NewTracer(out, ui.DefaultStyles())
		tracer.Log("Validation", "Validating output against template...")
		ui.PrintReport(tracer, "Validation", report)
	}

	if !report.Valid {
		return errValidationFailed
	}
	return nil
}
