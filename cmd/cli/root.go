package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ashutoshrp06/ocpm-builder/internal/config"
	"github.com/ashutoshrp06/ocpm-builder/internal/functions"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath    string
	functionsPath string
	verbose       bool
)

// errValidationFailed makes the process exit 1 without printing anything
// beyond the report itself.
var errValidationFailed = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:   "ocpm-builder",
	Short: "Generate OCPM configuration from business inputs",
	Long: `OCPM Builder Assistant

  Reads project input files, drafts a requirements document, generates the
  OCPM JSON configuration and validates it against a reference template.

Usage:
  ocpm-builder run                 # Stage 1, Stage 2, then validation
  ocpm-builder run --stage 1       # Requirements gathering only
  ocpm-builder run --stage 2       # OCPM builder, then validation
  ocpm-builder validate            # Validate existing output, no LLM calls`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			printError(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&functionsPath, "functions", "", "Path to a tool catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromPaths(
		"config.local.yaml",
		"config.yaml",
	)
}

func loadCatalog() (*functions.Registry, error) {
	if functionsPath != "" {
		return functions.LoadRegistry(functionsPath)
	}
	return functions.Default()
}

// createLogger builds a JSON logger on stderr at the configured level, or a
// development logger at debug level under --verbose.
func createLogger(level string) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
		Render(fmt.Sprintf("Error: %v", err)))
}
