package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"go.uber.org/zap"
)

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func NewAnthropic(apiKey, model, baseURL string, maxTokens int, timeout time.Duration, logger *zap.Logger) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, systemPrompt string, messages []models.Message, tools []models.ToolDefinition) (models.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  anthropicMessages(messages),
	}
	if strings.TrimSpace(systemPrompt) != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		params.Tools = anthropicTools(tools)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return models.Response{}, statusError(apiErr.StatusCode, apiErr.Error())
		}
		return models.Response{}, fmt.Errorf("request failed: %w", err)
	}

	p.logger.Debug("Anthropic response",
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens))

	return anthropicResponse(msg)
}

func anthropicResponse(msg *anthropic.Message) (models.Response, error) {
	var texts []string
	var resp models.Response

	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, variant.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(variant.Input) > 0 {
				if err := json.Unmarshal(variant.Input, &args); err != nil {
					return models.Response{}, fmt.Errorf("decode tool input for %s: %w", variant.Name, err)
				}
			}
			resp.ToolCalls = append(resp.ToolCalls, models.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: args,
			})
		}
	}

	resp.Text = strings.Join(texts, "\n")
	resp.Terminal = msg.StopReason != anthropic.StopReasonToolUse
	return resp, nil
}

func anthropicTools(defs []models.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		param := anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: def.Parameters["properties"],
				Required:   requiredNames(def.Parameters["required"]),
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}

func requiredNames(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func anthropicMessages(messages []models.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, b := range msg.Content {
			switch b.Type {
			case models.BlockText:
				if b.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				}
			case models.BlockToolUse:
				if b.ToolCall != nil {
					blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolCall.ID, b.ToolCall.Arguments, b.ToolCall.Name))
				}
			case models.BlockToolResult:
				blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, false))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if msg.Role == models.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}
