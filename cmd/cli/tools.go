package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available tools",
	Long: `List the tools the model can call during a stage.

Input tools read the project files, template tools read the reference
template, output tools write into the current stage's output folder.

Examples:
  ocpm-builder tools           # List all tools
  ocpm-builder tools --verbose # Show parameter details`,
	RunE: runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	registry, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load tool catalog: %w", err)
	}

	s := ui.DefaultStyles()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, s.Title.Render("Available Tools"))
	fmt.Fprintln(out)

	// Group by category, categories in order of first appearance.
	var order []string
	categories := make(map[string][]string)
	for _, name := range registry.List() {
		category := registry.Category(name)
		if _, seen := categories[category]; !seen {
			order = append(order, category)
		}
		categories[category] = append(categories[category], name)
	}

	for _, category := range order {
		fmt.Fprintf(out, "  %s\n", s.Category.Render(category))

		for _, name := range categories[category] {
			fn, _ := registry.Get(name)

			fmt.Fprintf(out, "    %s\n", s.ToolName.Render(fn.Name))
			fmt.Fprintf(out, "      %s\n", s.Detail.Render(firstLine(fn.Description)))

			props := fn.Properties()
			if verbose && len(props) > 0 {
				required := make(map[string]bool)
				for _, r := range fn.Required() {
					required[r] = true
				}
				fmt.Fprintln(out, "      Parameters:")
				for _, p := range sortedKeys(props) {
					req := ""
					if required[p] {
						req = " (required)"
					}
					fmt.Fprintf(out, "        %s%s\n", s.Stage.Render(p), req)
					if prop, ok := props[p].(map[string]any); ok {
						if desc, _ := prop["description"].(string); desc != "" {
							fmt.Fprintf(out, "          %s\n", s.Detail.Render(desc))
						}
					}
				}
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, s.Detail.Render(fmt.Sprintf("  Total: %d tools available", len(registry.List()))))

	if !verbose {
		fmt.Fprintln(out, s.Detail.Render("  Use --verbose for parameter details"))
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
