// Package functions holds the catalog of tool definitions advertised to the
// model. The catalog is a YAML document embedded in the binary; a file on disk
// can replace it for experiments.
package functions

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed functions.yaml
var defaultCatalog []byte

// Definition describes one tool from the catalog.
type Definition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Parameters  map[string]any `yaml:"parameters"`
}

// Required returns the names listed under the schema's "required" key.
func (d Definition) Required() []string {
	raw, ok := d.Parameters["required"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Properties returns the schema's "properties" map.
func (d Definition) Properties() map[string]any {
	props, _ := d.Parameters["properties"].(map[string]any)
	return props
}

// ToolDefinition converts the entry into the provider-facing shape.
func (d Definition) ToolDefinition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Parameters,
	}
}

type Registry struct {
	Functions map[string]Definition
	order     []string
}

// Default parses the embedded catalog.
func Default() (*Registry, error) {
	return Parse(defaultCatalog)
}

// LoadRegistry reads a catalog from disk.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a catalog document. Order of entries is preserved.
func Parse(data []byte) (*Registry, error) {
	var catalog struct {
		Functions []Definition `yaml:"functions"`
	}

	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse tool catalog: %w", err)
	}

	registry := &Registry{
		Functions: make(map[string]Definition, len(catalog.Functions)),
	}

	for _, fn := range catalog.Functions {
		if fn.Name == "" {
			return nil, fmt.Errorf("tool catalog entry without a name")
		}
		if _, dup := registry.Functions[fn.Name]; dup {
			return nil, fmt.Errorf("duplicate tool in catalog: %s", fn.Name)
		}
		if fn.Parameters == nil {
			fn.Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		registry.Functions[fn.Name] = fn
		registry.order = append(registry.order, fn.Name)
	}

	return registry, nil
}

func (r *Registry) Get(name string) (Definition, bool) {
	fn, exists := r.Functions[name]
	return fn, exists
}

// List returns tool names in catalog order.
func (r *Registry) List() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Definitions returns the provider-facing definitions in catalog order.
func (r *Registry) Definitions() []models.ToolDefinition {
	defs := make([]models.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.Functions[name].ToolDefinition())
	}
	return defs
}

func (r *Registry) Category(functionName string) string {
	if fn, exists := r.Functions[functionName]; exists && fn.Category != "" {
		return fn.Category
	}
	return "general"
}
