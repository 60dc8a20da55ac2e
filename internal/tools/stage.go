package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ashutoshrp06/ocpm-builder/internal/functions"
	"github.com/ashutoshrp06/ocpm-builder/internal/validator"
	"go.uber.org/zap"
)

// ValidateOutputTool runs the validation engine over the stage's output root.
type ValidateOutputTool struct {
	baseTool
	roots Roots
}

func (t *ValidateOutputTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	if err := decodeArgs(params, &noArgs{}); err != nil {
		return nil, err
	}

	report := validator.Validate(t.roots.Output, t.roots.Template)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return json.RawMessage(data), nil
}

// NewStageRegistry builds the full tool set bound to one stage's roots. Every
// tool named in the catalog must have an implementation and vice versa.
func NewStageRegistry(roots Roots, catalog *functions.Registry, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	build := map[string]func(functions.Definition) Tool{
		"scan_inputs": func(d functions.Definition) Tool {
			return &ScanInputsTool{baseTool: newBaseTool(d), root: roots.Input}
		},
		"read_file": func(d functions.Definition) Tool {
			return &ReadFileTool{baseTool: newBaseTool(d), root: roots.Input}
		},
		"write_file": func(d functions.Definition) Tool {
			return &WriteFileTool{baseTool: newBaseTool(d), root: roots.Output, logger: logger}
		},
		"create_directory": func(d functions.Definition) Tool {
			return &CreateDirectoryTool{baseTool: newBaseTool(d), root: roots.Output}
		},
		"list_template_folders": func(d functions.Definition) Tool {
			return &ListTemplateFoldersTool{baseTool: newBaseTool(d), root: roots.Template}
		},
		"read_template_file": func(d functions.Definition) Tool {
			return &ReadTemplateFileTool{baseTool: newBaseTool(d), root: roots.Template}
		},
		"validate_output": func(d functions.Definition) Tool {
			return &ValidateOutputTool{baseTool: newBaseTool(d), roots: roots}
		},
	}

	registry := NewRegistry()
	for _, name := range catalog.List() {
		ctor, ok := build[name]
		if !ok {
			return nil, fmt.Errorf("no implementation for catalog tool: %s", name)
		}
		def, _ := catalog.Get(name)
		if err := registry.Register(ctor(def)); err != nil {
			return nil, err
		}
		delete(build, name)
	}
	if len(build) > 0 {
		missing := make([]string, 0, len(build))
		for name := range build {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("tools missing from catalog: %s", strings.Join(missing, ", "))
	}

	return registry, nil
}
