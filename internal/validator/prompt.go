package validator

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// PromptValidator checks system prompt files before any model call is made.
type PromptValidator struct {
	maxBytes  int
	minLength int
}

func NewPromptValidator() *PromptValidator {
	return &PromptValidator{
		maxBytes:  512 * 1024,
		minLength: 20,
	}
}

func (v *PromptValidator) Validate(prompt string) error {
	if !utf8.ValidString(prompt) {
		return errors.New("invalid UTF-8 encoding")
	}

	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt is empty")
	}

	if len(prompt) < v.minLength {
		return fmt.Errorf("prompt too short: minimum %d characters", v.minLength)
	}

	if len(prompt) > v.maxBytes {
		return fmt.Errorf("prompt too long: maximum %d bytes", v.maxBytes)
	}

	return nil
}

// Sanitize drops a UTF-8 byte order mark, normalizes line endings and trims
// surrounding whitespace.
func (v *PromptValidator) Sanitize(prompt string) string {
	prompt = strings.TrimPrefix(prompt, "\ufeff")
	prompt = strings.ReplaceAll(prompt, "\r\n", "\n")
	return strings.TrimSpace(prompt)
}

// Load reads, validates and sanitizes a prompt file.
func (v *PromptValidator) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}

	prompt := v.Sanitize(string(data))
	if err := v.Validate(prompt); err != nil {
		return "", fmt.Errorf("invalid prompt file %s: %w", path, err)
	}

	return prompt, nil
}
