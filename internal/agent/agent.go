// Package agent implements the conversation loop that drives the model
// through tool calls until it ends its turn.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashutoshrp06/ocpm-builder/internal/llm"
	"github.com/ashutoshrp06/ocpm-builder/internal/validator"
	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds the provider calls of one stage.
const DefaultMaxIterations = 200

// continuePrompt is sent when the model yields without ending its turn and
// without calling a tool.
const continuePrompt = "Continue."

// ErrProtocolViolation is returned when a provider response cannot be folded
// into the transcript, for example because two tool calls share an ID.
var ErrProtocolViolation = validator.ErrProtocolViolation

// Dispatcher executes one tool call and returns its JSON result. It never
// fails; errors are part of the returned string.
type Dispatcher interface {
	Execute(ctx context.Context, name string, args map[string]any) string
}

// Observer receives progress events from a running loop.
type Observer interface {
	Iteration(stage string, n int)
	ToolExecuted(stage string, call models.ToolCall, result string)
	Finished(stage string, result Result)
}

// Loop runs one stage's conversation with the model.
type Loop struct {
	provider      llm.Provider
	dispatcher    Dispatcher
	responses     *validator.ResponseValidator
	observer      Observer
	maxIterations int
	logger        *zap.Logger
}

// Config holds loop configuration.
type Config struct {
	Provider      llm.Provider
	Dispatcher    Dispatcher
	Observer      Observer
	MaxIterations int
	Logger        *zap.Logger
}

// Request describes one stage run.
type Request struct {
	Stage          string
	SystemPrompt   string
	InitialMessage string
	Tools          []models.ToolDefinition
	// MaxIterations overrides the loop's default when positive.
	MaxIterations int
}

// Result is the outcome of a stage run. Incomplete is set when the
// iteration cap was reached before the model ended its turn; Text is empty
// in that case.
type Result struct {
	Text       string
	Iterations int
	Incomplete bool
	Transcript []models.Message
}

// New creates a loop with all components validated.
func New(cfg Config) (*Loop, error) {
	if cfg.Provider == nil {
		return nil, errors.New("agent: provider is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("agent: dispatcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	return &Loop{
		provider:      cfg.Provider,
		dispatcher:    cfg.Dispatcher,
		responses:     validator.NewResponseValidator(),
		observer:      cfg.Observer,
		maxIterations: cfg.MaxIterations,
		logger:        cfg.Logger,
	}, nil
}

// Run drives the conversation: call the provider, execute every requested
// tool in order, feed the results back, and repeat until the provider ends
// its turn or the iteration cap is reached. Tools run strictly between
// provider calls, one at a time.
func (l *Loop) Run(ctx context.Context, req Request) (Result, error) {
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = l.maxIterations
	}

	logger := l.logger.With(zap.String("stage", req.Stage))

	transcript := NewTranscript()
	transcript.Append(models.TextMessage(models.RoleUser, req.InitialMessage))

	for i := 1; i <= maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{Iterations: i - 1, Transcript: transcript.Messages()},
				fmt.Errorf("stage %s interrupted: %w", req.Stage, err)
		}

		l.observer.Iteration(req.Stage, i)
		start := time.Now()

		resp, err := l.provider.Chat(ctx, req.SystemPrompt, transcript.Messages(), req.Tools)
		if err != nil {
			logger.Error("Provider call failed",
				zap.Int("iteration", i),
				zap.Error(err))
			return Result{Iterations: i, Transcript: transcript.Messages()},
				fmt.Errorf("provider call %d failed: %w", i, err)
		}

		resp, err = l.responses.Validate(resp)
		if err != nil {
			return Result{Iterations: i, Transcript: transcript.Messages()}, err
		}

		logger.Debug("Provider responded",
			zap.Int("iteration", i),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("terminal", resp.Terminal),
			zap.Int("tool_calls", len(resp.ToolCalls)))

		if resp.Terminal {
			if resp.Text != "" {
				transcript.Append(models.TextMessage(models.RoleAssistant, resp.Text))
			}
			result := Result{Text: resp.Text, Iterations: i, Transcript: transcript.Messages()}
			l.observer.Finished(req.Stage, result)
			return result, nil
		}

		if len(resp.ToolCalls) == 0 {
			// Keep roles alternating; without text the same transcript is
			// simply resent.
			if resp.Text != "" {
				transcript.Append(models.TextMessage(models.RoleAssistant, resp.Text))
				transcript.Append(models.TextMessage(models.RoleUser, continuePrompt))
			}
			continue
		}

		transcript.Append(models.AssistantTurn(resp))

		results := make([]models.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			toolStart := time.Now()
			out := l.dispatcher.Execute(ctx, call.Name, call.Arguments)
			results = append(results, models.ToolResult{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    out,
				Duration:   time.Since(toolStart),
			})
			l.observer.ToolExecuted(req.Stage, call, out)
		}

		transcript.Append(models.ToolResultsTurn(results))
	}

	logger.Warn("Reached max iterations",
		zap.Int("max_iterations", maxIterations))

	result := Result{Iterations: maxIterations, Incomplete: true, Transcript: transcript.Messages()}
	l.observer.Finished(req.Stage, result)
	return result, nil
}

// MaxIterations returns the loop's default cap.
func (l *Loop) MaxIterations() int {
	return l.maxIterations
}

type nopObserver struct{}

func (nopObserver) Iteration(string, int)                        {}
func (nopObserver) ToolExecuted(string, models.ToolCall, string) {}
func (nopObserver) Finished(string, Result)                      {}
