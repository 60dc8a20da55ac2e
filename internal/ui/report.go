package ui

import (
	"fmt"

	"github.com/ashutoshrp06/ocpm-builder/internal/validator"
)

// PrintReport writes a validation report through the tracer under stage and
// returns report.Valid.
func PrintReport(t *Tracer, stage string, report validator.Report) bool {
	if report.Valid {
		t.logStyled(stage, "All checks passed.", t.styles.Success)
	} else {
		t.Error(stage, fmt.Sprintf("Found %d error(s):", report.Summary.ErrorsFound))
		for _, e := range report.Errors {
			t.logStyled(stage, "  ERROR: "+e, t.styles.Error)
		}
	}

	if len(report.Warnings) > 0 {
		t.Warn(stage, fmt.Sprintf("Found %d warning(s):", report.Summary.WarningsFound))
		for _, w := range report.Warnings {
			t.logStyled(stage, "  WARN: "+w, t.styles.Warning)
		}
	}

	s := report.Summary
	t.Log(stage, fmt.Sprintf("Summary: %d objects, %d events, %d folders checked.",
		s.ObjectsFound, s.EventsFound, s.FoldersChecked))

	return report.Valid
}
