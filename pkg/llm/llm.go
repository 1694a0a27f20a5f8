// Package llm defines the model backend boundary: one prompt in, one
// answer out.
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one side of a question/answer exchange.
type Turn struct {
	Role    string
	Content string
}

// Client is implemented by the OpenAI-compatible backend and by the
// test fake.
type Client interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the running conversation history followed by the
// new question into a single prompt string.
func BuildPrompt(history []Turn, question string) string {
	var sb strings.Builder
	sb.WriteString("История диалога:\n")
	for _, turn := range history {
		sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}
	sb.WriteString("Пользователь: " + question)
	return sb.String()
}

// WordCount counts whitespace-separated words; the confidence heuristic
// normalizes it against an 80-word ceiling.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Confidence maps an answer's word count to [0, 1].
func Confidence(answer string) float64 {
	const maxLength = 80.0
	score := float64(WordCount(answer)) / maxLength
	if score > 1.0 {
		return 1.0
	}
	return score
}
