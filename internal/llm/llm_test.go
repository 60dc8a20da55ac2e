package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashutoshrp06/ocpm-builder/internal/config"
	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readFileTool = models.ToolDefinition{
	Name:        "read_file",
	Description: "Read an input file",
	Parameters: map[string]any{
		"type":       "object",
		"properties": map[string]any{"path": map[string]any{"type": "string"}},
		"required":   []string{"path"},
	},
}

func transcript() []models.Message {
	call := models.ToolCall{ID: "call_1", Name: "read_file", Arguments: map[string]any{"path": "a.md"}}
	return []models.Message{
		models.TextMessage(models.RoleUser, "Start."),
		models.AssistantTurn(models.Response{Text: "Reading.", ToolCalls: []models.ToolCall{call}}),
		models.ToolResultsTurn([]models.ToolResult{{ToolCallID: "call_1", ToolName: "read_file", Content: `{"content":"x"}`}}),
	}
}

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr string
	}{
		{"anthropic", config.LLMConfig{Provider: "anthropic", Model: "m", APIKey: "k", MaxTokens: 10}, ""},
		{"openai", config.LLMConfig{Provider: "openai", Model: "m", Endpoint: "http://localhost:1234/v1", MaxTokens: 10}, ""},
		{"openai without endpoint", config.LLMConfig{Provider: "openai", Model: "m"}, "llm.endpoint is required"},
		{"unknown", config.LLMConfig{Provider: "gemini"}, "Unsupported LLM provider: 'gemini'. Available providers: anthropic, openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, statusError(tt.status, "body"), tt.want, "status %d", tt.status)
	}

	err := statusError(http.StatusBadRequest, strings.Repeat("x", 600))
	assert.Contains(t, err.Error(), "status 400")
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
}

func TestClient_ChatToolCalls(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"call_9","type":"function","function":{"name":"read_file","arguments":"{\"path\":\"b.md\"}"}}]}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/v1/", "secret", "local-model", time.Second, 0.2, 256, nil)
	resp, err := c.Chat(context.Background(), "system prompt", transcript(), []models.ToolDefinition{readFileTool})
	require.NoError(t, err)

	assert.False(t, resp.Terminal)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_9", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"path": "b.md"}, resp.ToolCalls[0].Arguments)

	assert.Equal(t, "local-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "read_file", got.Tools[0].Function.Name)

	roles := make([]string, 0, len(got.Messages))
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "tool"}, roles)
	assert.Equal(t, "call_1", got.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, `{"path":"a.md"}`, got.Messages[2].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "call_1", got.Messages[3].ToolCallID)
}

func TestClient_ChatTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"Done."}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "m", time.Second, 0, 16, nil)
	resp, err := c.Chat(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.True(t, resp.Terminal)
	assert.Equal(t, "Done.", resp.Text)
}

func TestClient_ChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, `down`, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, "", "m", time.Second, 0, 16, nil)
			_, err := c.Chat(context.Background(), "", nil, nil)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "m", time.Second, 0, 16, nil)
	_, err := c.Chat(context.Background(), "", nil, nil)
	assert.EqualError(t, err, "no response from LLM")
}

func TestAnthropic_Chat(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [
				{"type": "text", "text": "Let me look."},
				{"type": "tool_use", "id": "toolu_1", "name": "read_file", "input": {"path": "c.md"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	p := NewAnthropic("test-key", "claude-test", server.URL, 512, time.Second, nil)
	resp, err := p.Chat(context.Background(), "be careful", transcript(), []models.ToolDefinition{readFileTool})
	require.NoError(t, err)

	assert.False(t, resp.Terminal)
	assert.Equal(t, "Let me look.", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"path": "c.md"}, resp.ToolCalls[0].Arguments)

	assert.Equal(t, "claude-test", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 3)
	tools, ok := got["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)
}

func TestAnthropic_EndTurnIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"m",
			"content":[{"type":"text","text":"All done."}],"stop_reason":"end_turn",
			"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	p := NewAnthropic("k", "m", server.URL, 64, time.Second, nil)
	resp, err := p.Chat(context.Background(), "", []models.Message{models.TextMessage(models.RoleUser, "hi")}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Terminal)
	assert.Equal(t, "All done.", resp.Text)
	assert.Empty(t, resp.ToolCalls)
}

func TestAnthropic_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p := NewAnthropic("bad", "m", server.URL, 64, time.Second, nil)
	_, err := p.Chat(context.Background(), "", []models.Message{models.TextMessage(models.RoleUser, "hi")}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
