package questions

import (
	"fmt"
	"strings"

	"cosmoexpertbot/pkg/config"
)

type usernameStrategy struct{}

// NewUsernameStrategy returns a QuestionStrategy for Telegram handles:
// free text that must start with @.
func NewUsernameStrategy() QuestionStrategy {
	return &usernameStrategy{}
}

func (u *usernameStrategy) Name() string {
	return TypeUsername
}

func (u *usernameStrategy) Validate(question config.QuestionConfig) error {
	if len(question.Options) > 0 {
		return fmt.Errorf("config validation failed: question '%s' is type 'username' but has options defined", question.ID)
	}
	return nil
}

func (u *usernameStrategy) Render(ctx RenderContext) (PromptSpec, error) {
	return PromptSpec{
		Text:     ctx.Question.Prompt,
		Keyboard: nil,
		ForceNew: true,
	}, nil
}

// HandleAnswer keeps the leading @ in the stored value; lookups strip it
// on both sides.
func (u *usernameStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	if input.Source != InputSourceText {
		return AnswerResult{
			Feedback: "Пожалуйста, отправьте текстовый ответ.",
			Repeat:   true,
		}, nil
	}

	value := strings.TrimSpace(input.Text)
	if !strings.HasPrefix(value, "@") || len(value) < 2 {
		return AnswerResult{
			Feedback: "Некорректный username. Попробуйте ещё раз:",
			Repeat:   true,
		}, nil
	}

	draft, err := ctx.ensureDraft()
	if err != nil {
		return AnswerResult{}, err
	}

	draft.Data[ctx.Question.StoreKey] = value
	return AnswerResult{Advance: true, Stored: value}, nil
}
