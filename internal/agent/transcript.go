package agent

import "github.com/ashutoshrp06/ocpm-builder/pkg/models"

// Transcript is the ordered message history of one loop invocation. The
// whole history is resent on every provider call, so nothing is ever
// trimmed or reordered. A transcript belongs to a single Run and is not
// safe for concurrent use.
type Transcript struct {
	messages []models.Message
}

func NewTranscript() *Transcript {
	return &Transcript{
		messages: make([]models.Message, 0),
	}
}

func (t *Transcript) Append(msg models.Message) {
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the history.
func (t *Transcript) Messages() []models.Message {
	result := make([]models.Message, len(t.messages))
	copy(result, t.messages)
	return result
}
