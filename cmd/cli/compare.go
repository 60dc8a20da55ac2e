package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashutoshrp06/ocpm-builder/internal/textdiff"
	"github.com/ashutoshrp06/ocpm-builder/internal/tools"
	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/spf13/cobra"
)

var compareContext int

var compareCmd = &cobra.Command{
	Use:   "compare <relative-path> | compare <template-file> <output-file>",
	Short: "Diff a generated file against its template counterpart",
	Long: `Show a line diff between a template file and a generated file.

With one argument the path is resolved inside both the template folder and
the builder output folder. JSON documents are re-indented first so only
content changes show up.

Examples:
  ocpm-builder compare objects/object_Order.json
  ocpm-builder compare template.json generated.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareContext, "context", 3, "Unchanged lines to show around each change (-1 shows all)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	var before, after string
	if len(args) == 2 {
		before, after = args[0], args[1]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if before, err = tools.Resolve(cfg.Paths.Template, args[0]); err != nil {
			return err
		}
		if after, err = tools.Resolve(cfg.Paths.BuilderOutput(), args[0]); err != nil {
			return err
		}
	}

	oldText, err := readComparable(before)
	if err != nil {
		return err
	}
	newText, err := readComparable(after)
	if err != nil {
		return err
	}

	lines := textdiff.Lines(oldText, newText)
	styles := ui.DefaultStyles()
	out := cmd.OutOrStdout()

	ui.RenderDiff(out, styles, before+" -> "+after, lines, compareContext)

	stats := textdiff.Summarize(oldText, newText)
	fmt.Fprintln(out, styles.Muted.Render(fmt.Sprintf("%d added, %d removed, %d unchanged",
		stats.Added, stats.Removed, stats.Unchanged)))
	return nil
}

func readComparable(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return textdiff.NormalizeJSON(data), nil
	}
	return string(data), nil
}
