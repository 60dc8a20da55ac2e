package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"go.uber.org/zap"
)

// Client speaks the OpenAI chat/completions protocol, which most local and
// hosted gateways accept.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

func NewClient(endpoint, apiKey, model string, timeout time.Duration, temperature float32, maxTokens int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Tool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Tools       []Tool        `json:"tools,omitempty"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type ChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Client) Chat(ctx context.Context, systemPrompt string, messages []models.Message, tools []models.ToolDefinition) (models.Response, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    chatMessages(systemPrompt, messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, def := range tools {
		req.Tools = append(req.Tools, Tool{
			Type:     "function",
			Function: FunctionDef{Name: def.Name, Description: def.Description, Parameters: def.Parameters},
		})
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return models.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		c.endpoint+"/chat/completions",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return models.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.Response{}, statusError(resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.Response{}, fmt.Errorf("decode failed: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return models.Response{}, fmt.Errorf("no response from LLM")
	}

	choice := chatResp.Choices[0]
	c.logger.Debug("Chat completion response",
		zap.String("finish_reason", choice.FinishReason),
		zap.Int("tool_calls", len(choice.Message.ToolCalls)))

	out := models.Response{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return models.Response{}, fmt.Errorf("decode arguments for %s: %w", tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	out.Terminal = len(out.ToolCalls) == 0 && choice.FinishReason != "tool_calls"
	return out, nil
}

// chatMessages flattens the block transcript: tool results become one
// "tool" message each, tool uses ride on the assistant message.
func chatMessages(systemPrompt string, messages []models.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		out = append(out, ChatMessage{Role: "system", Content: systemPrompt})
	}

	for _, msg := range messages {
		var texts []string
		var calls []ToolCall
		for _, b := range msg.Content {
			switch b.Type {
			case models.BlockText:
				texts = append(texts, b.Text)
			case models.BlockToolUse:
				if b.ToolCall == nil {
					continue
				}
				args, _ := json.Marshal(b.ToolCall.Arguments)
				calls = append(calls, ToolCall{
					ID:       b.ToolCall.ID,
					Type:     "function",
					Function: FunctionCall{Name: b.ToolCall.Name, Arguments: string(args)},
				})
			case models.BlockToolResult:
				out = append(out, ChatMessage{Role: "tool", Content: b.Content, ToolCallID: b.ToolUseID})
			}
		}
		if len(texts) == 0 && len(calls) == 0 {
			continue
		}
		out = append(out, ChatMessage{
			Role:      string(msg.Role),
			Content:   strings.Join(texts, "\n"),
			ToolCalls: calls,
		})
	}
	return out
}
