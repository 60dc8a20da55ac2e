package validator

import (
	"errors"
	"fmt"

	"github.com/ashutoshrp06/ocpm-builder/pkg/models"
	"github.com/google/uuid"
)

// ErrProtocolViolation marks a provider response that cannot be folded into
// the transcript.
var ErrProtocolViolation = errors.New("protocol violation")

// ResponseValidator normalizes provider responses before they enter the
// transcript.
type ResponseValidator struct {
	newID func() string
}

func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{
		newID: func() string { return "call_" + uuid.NewString() },
	}
}

// Validate returns a copy of resp in which every tool call has an ID and an
// argument map. IDs that repeat within the response are rejected.
func (v *ResponseValidator) Validate(resp models.Response) (models.Response, error) {
	if len(resp.ToolCalls) == 0 {
		return resp, nil
	}

	calls := make([]models.ToolCall, len(resp.ToolCalls))
	seen := make(map[string]int, len(resp.ToolCalls))

	for i, call := range resp.ToolCalls {
		if call.ID == "" {
			call.ID = v.newID()
		}
		if prev, dup := seen[call.ID]; dup {
			return models.Response{}, fmt.Errorf("%w: duplicate tool call id %q at index %d and %d",
				ErrProtocolViolation, call.ID, prev, i)
		}
		seen[call.ID] = i

		if call.Arguments == nil {
			call.Arguments = map[string]any{}
		}
		calls[i] = call
	}

	resp.ToolCalls = calls
	return resp, nil
}
