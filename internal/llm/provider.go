// Package llm binds concrete model providers to the single Chat operation
// the conversation loop depends on.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashutoshrp06/ocpm-builder/internal/config"
	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"go.uber.org/zap"
)

// Provider sends the system prompt, the full transcript and the tool
// definitions to a model and returns its normalized response.
type Provider interface {
	Chat(ctx context.Context, systemPrompt string, messages []models.Message, tools []models.ToolDefinition) (models.Response, error)
}

var (
	ErrUnauthorized = errors.New("provider rejected credentials")
	ErrRateLimited  = errors.New("provider rate limit reached")
	ErrUnavailable  = errors.New("provider unavailable")
)

// Providers lists the names accepted by New.
var Providers = []string{"anthropic", "openai"}

// New builds the provider named in cfg.
func New(cfg config.LLMConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.APIKey, cfg.Model, cfg.Endpoint, cfg.MaxTokens, timeout, logger), nil
	case "openai":
		if cfg.Endpoint == "" {
			return nil, errors.New("llm.endpoint is required for the openai provider")
		}
		return NewClient(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout, float32(cfg.Temperature), cfg.MaxTokens, logger), nil
	default:
		return nil, fmt.Errorf("Unsupported LLM provider: '%s'. Available providers: %s",
			cfg.Provider, strings.Join(Providers, ", "))
	}
}

// statusError maps an HTTP status to a sentinel error.
func statusError(status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > 500 {
		body = body[:500] + "..."
	}

	var base error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		base = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	case status >= 500:
		base = ErrUnavailable
	default:
		return fmt.Errorf("LLM returned status %d: %s", status, body)
	}
	return fmt.Errorf("%w: status %d: %s", base, status, body)
}
