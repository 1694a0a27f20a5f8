package questions

import (
	"fmt"

	"cosmoexpertbot/pkg/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonLabelLimit = 20

type buttonsStrategy struct{}

// NewButtonsStrategy returns a QuestionStrategy for inline button prompts.
func NewButtonsStrategy() QuestionStrategy {
	return &buttonsStrategy{}
}

func (b *buttonsStrategy) Name() string {
	return TypeButtons
}

func (b *buttonsStrategy) Validate(question config.QuestionConfig) error {
	if len(question.Options) == 0 {
		return fmt.Errorf("config validation failed: question '%s' is type 'buttons' but has no options", question.ID)
	}
	for idx, option := range question.Options {
		if option.Text == "" {
			return fmt.Errorf("config validation failed: option #%d for question '%s' has no text", idx+1, question.ID)
		}
		if option.Value == "" {
			return fmt.Errorf("config validation failed: option #%d for question '%s' has no value", idx+1, question.ID)
		}
	}
	return nil
}

// Render lays the options out two per row with labels capped at 20 runes.
func (b *buttonsStrategy) Render(ctx RenderContext) (PromptSpec, error) {
	markup := tgbotapi.NewInlineKeyboardMarkup()
	var row []tgbotapi.InlineKeyboardButton
	for _, option := range ctx.Question.Options {
		data := fmt.Sprintf("%s%s:%s", ctx.CallbackPrefix, ctx.Question.ID, option.Value)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(truncateLabel(option.Text), data))
		if len(row) == 2 {
			markup.InlineKeyboard = append(markup.InlineKeyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}
	return PromptSpec{
		Text:     ctx.Question.Prompt,
		Keyboard: &markup,
		ForceNew: true,
	}, nil
}

// HandleAnswer accepts only a known option code and stores the option's
// full display text, not the short code.
func (b *buttonsStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	if input.Source != InputSourceCallback {
		return AnswerResult{
			Feedback: "Пожалуйста, выберите ответ с помощью кнопок ниже.",
			Repeat:   true,
		}, nil
	}

	option := b.findOption(ctx.Question, input.CallbackData)
	if option == nil {
		return AnswerResult{
			Feedback: "Ошибка: неизвестная сфера.",
			Repeat:   true,
		}, nil
	}

	draft, err := ctx.ensureDraft()
	if err != nil {
		return AnswerResult{}, err
	}
	draft.Data[ctx.Question.StoreKey] = option.Text
	return AnswerResult{Advance: true, Stored: option.Text}, nil
}

func (b *buttonsStrategy) findOption(question config.QuestionConfig, value string) *config.ButtonOption {
	for _, opt := range question.Options {
		if opt.Value == value {
			return &opt
		}
	}
	return nil
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= buttonLabelLimit {
		return s
	}
	return string(runes[:buttonLabelLimit])
}
