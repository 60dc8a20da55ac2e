// Package tools provides the sandboxed file tools the model drives and the
// dispatcher that routes tool calls to them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tool defines the interface that all tools must implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// Parameters returns the parameter schema for validation.
	Parameters() []Parameter

	// Execute runs the tool. The returned value is encoded as JSON and handed
	// back to the model; a json.RawMessage is passed through untouched.
	// Expected failures (missing file, traversal) belong in the value;
	// a non-nil error means the tool itself failed.
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// Parameter defines a tool parameter with validation rules.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // JSON Schema primitive: "string", "integer", "boolean", ...
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"` // Valid values if restricted
}

// Registry manages tool registration and lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Executor handles tool execution with validation and timing. Execute never
// fails: every problem comes back as a JSON object with an "error" key so the
// model can read it and recover.
type Executor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewExecutor creates a new tool executor.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, logger: logger}
}

// Execute runs a tool by name with the given arguments and returns the
// JSON-encoded result.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]any) (out string) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Tool panicked",
				zap.String("tool", toolName),
				zap.Any("panic", r))
			out = errorJSON(fmt.Sprintf("Tool '%s' failed: panic: %v", toolName, r))
		}
		e.logger.Debug("Tool executed",
			zap.String("tool", toolName),
			zap.Duration("duration", time.Since(start)),
			zap.Int("result_len", len(out)))
	}()

	tool, exists := e.registry.Get(toolName)
	if !exists {
		return errorJSON(fmt.Sprintf("Unknown tool: %s", toolName))
	}

	if params == nil {
		params = map[string]any{}
	}

	// Validate parameters
	if err := e.validateParams(tool, params); err != nil {
		e.logger.Warn("Rejected tool arguments",
			zap.String("tool", toolName),
			zap.Error(err))
		return errorJSON(fmt.Sprintf("Invalid arguments for tool '%s': %v", toolName, err))
	}

	if err := ctx.Err(); err != nil {
		return errorJSON(fmt.Sprintf("Tool '%s' failed: %v", toolName, err))
	}

	result, err := tool.Execute(ctx, params)
	if err != nil {
		e.logger.Warn("Tool failed",
			zap.String("tool", toolName),
			zap.Error(err))
		return errorJSON(fmt.Sprintf("Tool '%s' failed: %v", toolName, err))
	}

	if raw, ok := result.(json.RawMessage); ok {
		return string(raw)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorJSON(fmt.Sprintf("Tool '%s' failed: %v", toolName, err))
	}
	return string(data)
}

// validateParams checks required parameters, primitive types, enum values
// and rejects parameters the tool does not declare.
func (e *Executor) validateParams(tool Tool, params map[string]any) error {
	declared := make(map[string]struct{})
	for _, def := range tool.Parameters() {
		declared[def.Name] = struct{}{}
		value, exists := params[def.Name]

		if def.Required && !exists {
			return fmt.Errorf("missing required parameter: %s", def.Name)
		}
		if !exists {
			continue
		}

		if !typeMatches(value, def.Type) {
			return fmt.Errorf("invalid type for %s: expected %s", def.Name, def.Type)
		}

		if len(def.Enum) > 0 {
			s, _ := value.(string)
			valid := false
			for _, allowed := range def.Enum {
				if s == allowed {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("invalid value for %s: must be one of %v", def.Name, def.Enum)
			}
		}
	}

	var unknown []string
	for name := range params {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameter: %s", unknown[0])
	}
	return nil
}

func typeMatches(value any, typ string) bool {
	switch typ {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return v == math.Trunc(v)
		case json.Number:
			_, err := v.Int64()
			return err == nil
		}
		return false
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64, json.Number:
			return true
		}
		return false
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		return true
	}
}

func errorJSON(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}
