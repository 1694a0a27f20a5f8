// Package fakellm provides a scripted llm.Client for headless tests.
package fakellm

import (
	"context"
	"sync"

	"cosmoexpertbot/pkg/llm"
)

// Fake returns queued answers in order, repeating the last one when the
// queue runs out. A scripted error wins over any queued answer.
type Fake struct {
	mu      sync.Mutex
	Answers []string
	Err     error
	Prompts []string
}

var _ llm.Client = (*Fake)(nil)

func (f *Fake) Chat(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Answers) == 0 {
		return "", nil
	}
	answer := f.Answers[0]
	if len(f.Answers) > 1 {
		f.Answers = f.Answers[1:]
	}
	return answer, nil
}

// LastPrompt returns the most recent prompt seen by the fake.
func (f *Fake) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}
