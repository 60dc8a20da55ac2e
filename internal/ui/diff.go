package ui

import (
	"fmt"
	"io"

	"github.com/ashutoshrp06/ocpm-builder/internal/textdiff"
)

// RenderDiff writes a unified-style line diff. Context runs longer than
// 2*context lines are collapsed.
func RenderDiff(w io.Writer, s Styles, title string, lines []textdiff.Line, context int) {
	fmt.Fprintln(w, s.Title.Render(title))

	hidden := 0
	flush := func() {
		if hidden > 0 {
			fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("  ... %d unchanged line(s)", hidden)))
			hidden = 0
		}
	}

	for i, line := range lines {
		switch line.Type {
		case textdiff.LineAdded:
			flush()
			fmt.Fprintln(w, s.DiffAdded.Render("+ "+line.Text))
		case textdiff.LineRemoved:
			flush()
			fmt.Fprintln(w, s.DiffRemoved.Render("- "+line.Text))
		default:
			if context >= 0 && !nearChange(lines, i, context) {
				hidden++
				continue
			}
			flush()
			fmt.Fprintln(w, s.DiffContext.Render("  "+line.Text))
		}
	}
	flush()
}

func nearChange(lines []textdiff.Line, i, context int) bool {
	lo, hi := i-context, i+context
	if lo < 0 {
		lo = 0
	}
	if hi >= len(lines) {
		hi = len(lines) - 1
	}
	for j := lo; j <= hi; j++ {
		if lines[j].Type != textdiff.LineContext {
			return true
		}
	}
	return false
}
