package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ashutoshrp06/ocpm-builder/internal/agent"
	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

// Tracer prints the line-oriented progress trace of a pipeline run. It
// implements agent.Observer. Calls come from the single goroutine driving
// the pipeline.
type Tracer struct {
	out    io.Writer
	styles Styles
}

var _ agent.Observer = (*Tracer)(nil)

func NewTracer(out io.Writer, styles Styles) *Tracer {
	return &Tracer{out: out, styles: styles}
}

// Log prints one "[stage] message" line.
func (t *Tracer) Log(stage, message string) {
	t.logStyled(stage, message, t.styles.Info)
}

// Warn prints a warning line for a stage.
func (t *Tracer) Warn(stage, message string) {
	t.logStyled(stage, message, t.styles.Warning)
}

// Error prints an error line for a stage.
func (t *Tracer) Error(stage, message string) {
	t.logStyled(stage, message, t.styles.Error)
}

func (t *Tracer) logStyled(stage, message string, style lipgloss.Style) {
	fmt.Fprintf(t.out, "%s %s\n", t.styles.Stage.Render("["+stage+"]"), style.Render(message))
}

// Blank prints an empty separator line.
func (t *Tracer) Blank() {
	fmt.Fprintln(t.out)
}

func (t *Tracer) Iteration(stage string, n int) {
	t.Log(stage, fmt.Sprintf("LLM call %d...", n))
}

func (t *Tracer) ToolExecuted(stage string, call models.ToolCall, result string) {
	switch call.Name {
	case "write_file":
		var res struct {
			Status string `json:"status"`
			Path   string `json:"path"`
		}
		if json.Unmarshal([]byte(result), &res) == nil && res.Status == "ok" {
			t.logStyled(stage, "  Written: "+res.Path, t.styles.Detail)
		}
	case "scan_inputs":
		var res struct {
			Count int `json:"count"`
		}
		if json.Unmarshal([]byte(result), &res) == nil {
			t.logStyled(stage, fmt.Sprintf("  Found %d input file(s)", res.Count), t.styles.Detail)
		}
	}
}

func (t *Tracer) Finished(stage string, result agent.Result) {
	if result.Incomplete {
		t.Warn(stage, fmt.Sprintf("WARNING: Reached max iterations (%d). Stopping.", result.Iterations))
		return
	}
	if strings.TrimSpace(result.Text) != "" {
		t.logStyled(stage, "Complete.", t.styles.Success)
	}
}
