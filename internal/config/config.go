// Package config loads the builder configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. OCPM_LLM_MODEL.
const EnvPrefix = "OCPM"

// ErrMissingEnv is returned when a ${VAR} reference names an unset variable.
var ErrMissingEnv = errors.New("environment variable not set")

// Config holds all builder configuration.
type Config struct {
	LLM   LLMConfig   `yaml:"llm" mapstructure:"llm"`
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

type LLMConfig struct {
	// Provider is "anthropic" or "openai" (any OpenAI-compatible endpoint).
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
}

type PathsConfig struct {
	InputFiles    string     `yaml:"input_files" mapstructure:"input_files"`
	Template      string     `yaml:"template" mapstructure:"template"`
	Output        string     `yaml:"output" mapstructure:"output"`
	Prompts       StagePaths `yaml:"prompts" mapstructure:"prompts"`
	ModuleOutputs StagePaths `yaml:"module_outputs" mapstructure:"module_outputs"`
}

// StagePaths names one path per pipeline module.
type StagePaths struct {
	Requirements   string `yaml:"requirements" mapstructure:"requirements"`
	Builder        string `yaml:"builder" mapstructure:"builder"`
	KnowledgeModel string `yaml:"knowledge_model" mapstructure:"knowledge_model"`
	Apps           string `yaml:"apps" mapstructure:"apps"`
}

type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-5",
			APIKey:         "${ANTHROPIC_API_KEY}",
			MaxTokens:      4096,
			TimeoutSeconds: 300,
			Temperature:    0,
		},
		Paths: PathsConfig{
			InputFiles: "Input/Project input files",
			Template:   "Input/TEMPLATE",
			Output:     "Output",
			Prompts: StagePaths{
				Requirements:   "prompts/1_requirements.md",
				Builder:        "prompts/2_ocpm_builder.md",
				KnowledgeModel: "prompts/3_knowledge_model.md",
				Apps:           "prompts/4_apps.md",
			},
			ModuleOutputs: StagePaths{
				Requirements:   "1_Requirements",
				Builder:        "2_OCPM_Builder",
				KnowledgeModel: "3_Knowledge_Model",
				Apps:           "4_Apps",
			},
		},
		Agent: AgentConfig{
			MaxIterations: 200,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.timeout_seconds", d.LLM.TimeoutSeconds)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("paths.input_files", d.Paths.InputFiles)
	v.SetDefault("paths.template", d.Paths.Template)
	v.SetDefault("paths.output", d.Paths.Output)
	v.SetDefault("paths.prompts.requirements", d.Paths.Prompts.Requirements)
	v.SetDefault("paths.prompts.builder", d.Paths.Prompts.Builder)
	v.SetDefault("paths.prompts.knowledge_model", d.Paths.Prompts.KnowledgeModel)
	v.SetDefault("paths.prompts.apps", d.Paths.Prompts.Apps)
	v.SetDefault("paths.module_outputs.requirements", d.Paths.ModuleOutputs.Requirements)
	v.SetDefault("paths.module_outputs.builder", d.Paths.ModuleOutputs.Builder)
	v.SetDefault("paths.module_outputs.knowledge_model", d.Paths.ModuleOutputs.KnowledgeModel)
	v.SetDefault("paths.module_outputs.apps", d.Paths.ModuleOutputs.Apps)
	v.SetDefault("agent.max_iterations", d.Agent.MaxIterations)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads a YAML config file, applies OCPM_* environment overrides,
// resolves ${VAR} references and makes relative paths absolute against the
// file's directory.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(absPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.resolveEnv(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(absPath))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromPaths loads the first config file that exists.
func LoadFromPaths(paths ...string) (*Config, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return nil, fmt.Errorf("config file not found (tried: %s)", strings.Join(paths, ", "))
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("llm.provider is required")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Provider == "anthropic" && c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required for the anthropic provider")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must not be negative, got %d", c.LLM.TimeoutSeconds)
	}
	required := []struct{ key, val string }{
		{"paths.input_files", c.Paths.InputFiles},
		{"paths.template", c.Paths.Template},
		{"paths.output", c.Paths.Output},
		{"paths.module_outputs.requirements", c.Paths.ModuleOutputs.Requirements},
		{"paths.module_outputs.builder", c.Paths.ModuleOutputs.Builder},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// resolveEnv replaces whole-string ${VAR} values with the environment.
func (c *Config) resolveEnv() error {
	for _, field := range []*string{
		&c.LLM.Provider,
		&c.LLM.Model,
		&c.LLM.APIKey,
		&c.LLM.Endpoint,
	} {
		resolved, err := expandEnv(*field)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

func expandEnv(value string) (string, error) {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value, nil
	}
	name := value[2 : len(value)-1]
	resolved, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: '%s'. Set it with: export %s=your-api-key", ErrMissingEnv, name, name)
	}
	return resolved, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{
		&c.Paths.InputFiles,
		&c.Paths.Template,
		&c.Paths.Output,
		&c.Paths.Prompts.Requirements,
		&c.Paths.Prompts.Builder,
		&c.Paths.Prompts.KnowledgeModel,
		&c.Paths.Prompts.Apps,
	} {
		*p = joinIfRelative(base, *p)
	}
}

func joinIfRelative(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// RequirementsOutput is the output folder of the requirements stage.
func (p PathsConfig) RequirementsOutput() string {
	return joinIfRelative(p.Output, p.ModuleOutputs.Requirements)
}

// BuilderOutput is the output folder of the builder stage.
func (p PathsConfig) BuilderOutput() string {
	return joinIfRelative(p.Output, p.ModuleOutputs.Builder)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.LLM.APIKey != "" && !strings.HasPrefix(cp.LLM.APIKey, "${") {
		cp.LLM.APIKey = "********"
	}
	return &cp
}
