package main

import (
	"fmt"
	"os"

	"github.com/ashutoshrp06/ocpm-builder/internal/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create configuration",
	Long:  "View the current configuration or create a default config file.",
	RunE:  runConfig,
}

var (
	configInit bool
	configShow bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", true, "Show current configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		return initConfig(cmd)
	}

	if configShow {
		return showConfig(cmd)
	}
	return nil
}

func initConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	path := "config.yaml"
	if configPath != "" {
		path = configPath
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render(path+" already exists. Use --show to view it."))
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).
		Render("Created "+path+" with default settings."))
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - LLM provider, model and API key")
	fmt.Fprintln(out, "  - Input, template and output folders")
	fmt.Fprintln(out, "  - Stage prompt files")
	return nil
}

func showConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render(fmt.Sprintf("Could not load config (%v). Showing defaults:\n", err)))
	} else {
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true).
			Render("Current Configuration:\n"))
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).
		Render("Config file locations (in order of precedence):"))
	fmt.Fprintln(out, "  1. --config <path>")
	fmt.Fprintln(out, "  2. ./config.local.yaml")
	fmt.Fprintln(out, "  3. ./config.yaml")
	fmt.Fprintf(out, "Environment overrides use the %s_ prefix, e.g. %s_LLM_MODEL.\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
