package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ashutoshrp06/ocpm-builder/internal/agent"
	"github.com/ashutoshrp06/ocpm-builder/internal/llm"
	"github.com/ashutoshrp06/ocpm-builder/internal/ui"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	s := ui.DefaultStyles()
	out := cmd.OutOrStdout()

	rows := []struct{ label, value string }{
		{"Version:", Version},
		{"Git Commit:", GitCommit},
		{"Build Date:", BuildDate},
		{"Go Version:", runtime.Version()},
		{"Platform:", runtime.GOOS + "/" + runtime.GOARCH},
		{"Providers:", strings.Join(llm.Providers, ", ")},
		{"Max Iterations:", fmt.Sprintf("%d (default)", agent.DefaultMaxIterations)},
	}

	fmt.Fprintln(out, s.Title.Render("ocpm-builder"))
	fmt.Fprintln(out)
	for _, r := range rows {
		fmt.Fprintf(out, "%s %s\n", s.Detail.Render(fmt.Sprintf("%-15s", r.label)), s.Stage.Render(r.value))
	}
}
