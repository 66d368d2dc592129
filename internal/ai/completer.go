package ai

import (
	"context"
	"strings"
)

const defaultMaxTokens = 1024

// Request is a single prompt sent to a model.
type Request struct {
	System      string
	Prompt      string
	JSON        bool
	Temperature float64
	MaxTokens   int
}

func (r Request) maxTokens() int {
	if r.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return r.MaxTokens
}

// Completer is a raw text-completion backend.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// truncateText limits text to maxLen characters.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// cleanJSON removes markdown code fences if present.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
