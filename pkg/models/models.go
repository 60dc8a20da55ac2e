package models

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType discriminates the content blocks of a message.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one ordered piece of a message: free text, a tool call made
// by the assistant, or the result of a tool call fed back to the model.
type ContentBlock struct {
	Type      BlockType `json:"type"`
	Text      string    `json:"text,omitempty"`
	ToolCall  *ToolCall `json:"tool_call,omitempty"`
	ToolUseID string    `json:"tool_use_id,omitempty"`
	Content   string    `json:"content,omitempty"`
}

// Message represents a conversation message in the agent loop.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ToolCall represents a request from the LLM to execute a tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the structured outcome of one dispatched tool call.
type ToolResult struct {
	ToolCallID string        `json:"tool_call_id"`
	ToolName   string        `json:"tool_name"`
	Content    string        `json:"content"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Response is the normalized reply of a provider for one call.
type Response struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// Terminal is true when the provider signalled the end of its turn.
	Terminal bool `json:"terminal"`
}

// ToolDefinition advertises a tool to the provider. Parameters is a JSON
// Schema object.
type ToolDefinition struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
}

// TextMessage builds a single-block text message.
func TextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

// AssistantTurn builds the assistant message for a response: an optional text
// block followed by one tool_use block per call, in order.
func AssistantTurn(resp Response) Message {
	blocks := make([]ContentBlock, 0, len(resp.ToolCalls)+1)
	if resp.Text != "" {
		blocks = append(blocks, ContentBlock{Type: BlockText, Text: resp.Text})
	}
	for i := range resp.ToolCalls {
		call := resp.ToolCalls[i]
		blocks = append(blocks, ContentBlock{Type: BlockToolUse, ToolCall: &call})
	}
	return Message{Role: RoleAssistant, Content: blocks}
}

// ToolResultsTurn bundles tool results into the single user message that
// answers an assistant turn.
func ToolResultsTurn(results []ToolResult) Message {
	blocks := make([]ContentBlock, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, ContentBlock{
			Type:      BlockToolResult,
			ToolUseID: r.ToolCallID,
			Content:   r.Content,
		})
	}
	return Message{Role: RoleUser, Content: blocks}
}

// Text concatenates the text blocks of a message.
func (m Message) Text() string {
	var out string
	for _, b := range m.Content {
		if b.Type != BlockText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += b.Text
	}
	return out
}
