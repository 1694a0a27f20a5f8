package questions

import (
	"fmt"

	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/ports/botport"
	"cosmoexpertbot/pkg/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotPort exposes outbound messaging helpers via the shared ports package.
type BotPort = botport.BotPort

// QuestionStrategy defines the lifecycle hooks for rendering and processing question answers.
type QuestionStrategy interface {
	Name() string
	Validate(question config.QuestionConfig) error
	Render(RenderContext) (PromptSpec, error)
	HandleAnswer(AnswerContext, AnswerInput) (AnswerResult, error)
}

// RenderContext captures dependencies for prompt generation.
type RenderContext struct {
	Bot            BotPort
	LastPrompt     botport.BotMessage
	ChatID         int64
	MessageID      int
	UserState      *state.UserState
	Draft          *state.Draft
	Question       config.QuestionConfig
	CallbackPrefix string
}

// AnswerContext mirrors RenderContext and additionally carries callback metadata.
type AnswerContext struct {
	RenderContext
	Message    botport.BotMessage
	CallbackID string
}

// PromptSpec defines the text and markup returned by strategies.
type PromptSpec struct {
	Text     string
	Keyboard *tgbotapi.InlineKeyboardMarkup
	ForceNew bool
}

// AnswerInputSource differentiates between text and callback payloads.
type AnswerInputSource string

const (
	InputSourceText     AnswerInputSource = "text"
	InputSourceCallback AnswerInputSource = "callback"
)

const (
	TypeText     = "text"
	TypeButtons  = "buttons"
	TypeUsername = "username"
)

// AnswerInput wraps user responses in a transport-agnostic struct.
type AnswerInput struct {
	Source       AnswerInputSource
	Text         string
	CallbackData string
	MessageID    int
}

// AnswerResult instructs the flow how to proceed after a strategy processes an input.
type AnswerResult struct {
	Advance  bool
	Repeat   bool
	Feedback string
	// Stored is the value written to the draft when Advance is true.
	Stored string
}

func (ctx RenderContext) ensureDraft() (*state.Draft, error) {
	if ctx.Draft == nil {
		return nil, fmt.Errorf("draft is nil")
	}
	if ctx.Draft.Data == nil {
		ctx.Draft.Data = make(map[string]string)
	}
	return ctx.Draft, nil
}
