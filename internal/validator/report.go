// Package validator checks a generated OCPM output folder against a reference
// template folder and validates the text that flows in and out of the model.
package validator

import "fmt"

// Report is the outcome of one validation run. Valid is true exactly when
// Errors is empty.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Summary  Summary  `json:"summary"`
}

type Summary struct {
	FoldersChecked int `json:"folders_checked"`
	ErrorsFound    int `json:"errors_found"`
	WarningsFound  int `json:"warnings_found"`
	ObjectsFound   int `json:"objects_found"`
	EventsFound    int `json:"events_found"`
}

// collector accumulates findings in the order the checks produce them.
type collector struct {
	errors   []string
	warnings []string
}

func (c *collector) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *collector) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}
