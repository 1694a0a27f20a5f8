package questions

import (
	"fmt"
	"strings"

	"cosmoexpertbot/pkg/config"
)

type textStrategy struct{}

// NewTextStrategy returns a QuestionStrategy for free-text prompts.
func NewTextStrategy() QuestionStrategy {
	return &textStrategy{}
}

func (t *textStrategy) Name() string {
	return TypeText
}

func (t *textStrategy) Validate(question config.QuestionConfig) error {
	if len(question.Options) > 0 {
		return fmt.Errorf("config validation failed: question '%s' is type 'text' but has options defined", question.ID)
	}
	return nil
}

func (t *textStrategy) Render(ctx RenderContext) (PromptSpec, error) {
	return PromptSpec{
		Text:     ctx.Question.Prompt,
		Keyboard: nil,
		ForceNew: true,
	}, nil
}

func (t *textStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	if input.Source != InputSourceText {
		return AnswerResult{
			Feedback: "Пожалуйста, отправьте текстовый ответ.",
			Repeat:   true,
		}, nil
	}

	value := strings.TrimSpace(input.Text)
	if value == "" {
		return AnswerResult{
			Feedback: "Текст не должен быть пустым, попробуйте ещё раз.",
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
