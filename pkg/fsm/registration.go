package fsm

import (
	"context"
	"fmt"
	"log"

	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/fsm/questions"
	"cosmoexpertbot/pkg/state"
	"cosmoexpertbot/pkg/storage"

	"github.com/looplab/fsm"
)

// NewRegistrationFSM builds the per-user registration machine from the
// questionnaire config. Each question gets its own awaiting_<id> state,
// chained in config order, so a malformed questionnaire fails at
// startup rather than silently dead-ending a user.
func NewRegistrationFSM(cfg *config.BotConfig, initialState string) *fsm.FSM {

	qs := cfg.Registration

	callbacks := fsm.Callbacks{
		"enter_" + StateRegIdle: enterRegIdle,
	}
	for _, q := range qs {
		callbacks["enter_"+registrationState(q)] = enterAwaitingAnswer
	}

	events := fsm.Events{
		{Name: EventStartRegistration, Src: []string{StateRegIdle}, Dst: registrationState(qs[0])},
	}
	allAwaiting := make([]string, 0, len(qs))
	for i, q := range qs {
		allAwaiting = append(allAwaiting, registrationState(q))
		if i+1 < len(qs) {
			events = append(events, fsm.EventDesc{
				Name: EventAnswerAccepted,
				Src:  []string{registrationState(q)},
				Dst:  registrationState(qs[i+1]),
			})
		}
	}
	events = append(events,
		fsm.EventDesc{Name: EventRegistrationDone, Src: []string{registrationState(qs[len(qs)-1])}, Dst: StateRegIdle},
		fsm.EventDesc{Name: EventForceExit, Src: allAwaiting, Dst: StateRegIdle},
	)

	return fsm.NewFSM(initialState, events, callbacks)
}

func registrationState(q config.QuestionConfig) string {
	return AwaitingStatePrefix + q.ID
}

// currentQuestion resolves the question a user in fsmState is being
// asked, or ok=false when the state is not a collection state.
func currentQuestion(cfg *config.BotConfig, fsmState string) (config.QuestionConfig, int, bool) {
	for i, q := range cfg.Registration {
		if registrationState(q) == fsmState {
			return q, i, true
		}
	}
	return config.QuestionConfig{}, 0, false
}

func enterAwaitingAnswer(ctx context.Context, e *fsm.Event) {
	userState, deps, ok := castEventArgs(e)
	if !ok {
		log.Printf("[enterAwaitingAnswer] FATAL: bad event args for event %s", e.Event)
		return
	}
	askCurrentQuestion(ctx, userState, deps)
}

// askCurrentQuestion renders and sends the prompt for the user's
// current registration step.
func askCurrentQuestion(ctx context.Context, userState *state.UserState, deps *Deps) {
	question, _, ok := currentQuestion(deps.Config, userState.RegistrationFSM.Current())
	if !ok {
		log.Printf("[askCurrentQuestion] Error: state '%s' has no question for user %d", userState.RegistrationFSM.Current(), userState.UserID)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
		return
	}

	strategy := questions.Get(question.Type)
	if strategy == nil {
		log.Printf("[askCurrentQuestion] Error: no strategy registered for type '%s'", question.Type)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
		return
	}

	prompt, err := strategy.Render(buildRenderContext(userState, deps, question))
	if err != nil {
		log.Printf("[askCurrentQuestion] Error rendering question '%s': %v", question.ID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
		return
	}

	var markup interface{}
	if prompt.Keyboard != nil {
		markup = *prompt.Keyboard
	}
	sentMsg, err := deps.Bot.SendMessage(ctx, userState.ChatID, prompt.Text, markup)
	if err != nil {
		log.Printf("[askCurrentQuestion] Error sending prompt for user %d (Q: %s): %v", userState.UserID, question.ID, err)
		return
	}

	userState.LastMessageID = sentMsg.MessageID
	userState.LastPrompt = sentMsg
}

func buildRenderContext(userState *state.UserState, deps *Deps, question config.QuestionConfig) questions.RenderContext {
	return questions.RenderContext{
		Bot:            deps.Bot,
		LastPrompt:     userState.LastPrompt,
		ChatID:         userState.ChatID,
		MessageID:      userState.LastMessageID,
		UserState:      userState,
		Draft:          userState.Draft,
		Question:       question,
		CallbackPrefix: CallbackAnswerPrefix,
	}
}

func buildAnswerContext(userState *state.UserState, deps *Deps, question config.QuestionConfig, callbackID string) questions.AnswerContext {
	return questions.AnswerContext{
		RenderContext: buildRenderContext(userState, deps, question),
		Message:       userState.LastPrompt,
		CallbackID:    callbackID,
	}
}

// handleAnswerResult applies a strategy verdict: repeat the current
// prompt, or advance the machine one step.
func handleAnswerResult(ctx context.Context, result questions.AnswerResult, userState *state.UserState, deps *Deps, callbackID string, messageID int) {
	if result.Feedback != "" {
		if callbackID != "" {
			if err := deps.Bot.AnswerCallback(ctx, callbackID, result.Feedback); err != nil {
				log.Printf("[handleAnswerResult] Error answering callback for user %d: %v", userState.UserID, err)
			}
		} else {
			_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, result.Feedback, nil)
		}
	}

	if result.Repeat && !result.Advance {
		// Re-issue the same prompt; state does not move.
		askCurrentQuestion(ctx, userState, deps)
		return
	}

	if !result.Advance {
		return
	}

	if callbackID != "" && messageID != 0 {
		fixateButtonChoice(ctx, userState, deps, messageID, result.Stored)
	}

	advanceRegistration(ctx, userState, deps)
}

// fixateButtonChoice rewrites the inline-keyboard prompt so the chosen
// option stays visible and the buttons disappear.
func fixateButtonChoice(ctx context.Context, userState *state.UserState, deps *Deps, messageID int, chosen string) {
	question, _, ok := currentQuestion(deps.Config, userState.RegistrationFSM.Current())
	if !ok {
		return
	}
	text := fmt.Sprintf("%s\n✅ %s", question.Prompt, chosen)
	if _, err := deps.Bot.EditMessage(ctx, userState.ChatID, messageID, text, nil); err != nil {
		log.Printf("[fixateButtonChoice] Error editing message %d for user %d: %v", messageID, userState.UserID, err)
	}
}

func advanceRegistration(ctx context.Context, userState *state.UserState, deps *Deps) {
	_, idx, ok := currentQuestion(deps.Config, userState.RegistrationFSM.Current())
	if !ok {
		log.Printf("[advanceRegistration] Error: invalid state '%s' for user %d", userState.RegistrationFSM.Current(), userState.UserID)
		return
	}

	nextEvent := EventAnswerAccepted
	if idx == len(deps.Config.Registration)-1 {
		nextEvent = EventRegistrationDone
	}

	if err := userState.RegistrationFSM.Event(ctx, nextEvent, userState, deps); err != nil {
		log.Printf("[advanceRegistration] Error triggering event '%s' for user %d: %v", nextEvent, userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
	}
}

// enterRegIdle finalizes the flow: a completed questionnaire persists
// one Registration record, a forced exit just resets the draft.
func enterRegIdle(ctx context.Context, e *fsm.Event) {
	userState, deps, ok := castEventArgs(e)
	if !ok {
		log.Printf("[enterRegIdle] FATAL: bad event args for event %s", e.Event)
		return
	}

	switch e.Event {
	case EventRegistrationDone:
		completeRegistration(ctx, userState, deps)
	case EventForceExit:
		log.Printf("[enterRegIdle] Registration force-exited for user %d from %s", userState.UserID, e.Src)
		userState.Draft = nil
	default:
		log.Printf("[enterRegIdle] Warning: entered reg_idle for user %d via unexpected event: %s", userState.UserID, e.Event)
		userState.Draft = nil
	}
	userState.LastMessageID = 0
}

func completeRegistration(ctx context.Context, userState *state.UserState, deps *Deps) {
	record, err := draftToRegistration(userState.Draft)
	if err != nil {
		log.Printf("[completeRegistration] Error: incomplete draft for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgRegistrationFailed, nil)
		userState.Draft = nil
		return
	}

	if err := deps.Registrations.Append(record); err != nil {
		log.Printf("[completeRegistration] Error persisting registration for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgRegistrationFailed, nil)
		return
	}

	log.Printf("[completeRegistration] Registration saved for user %d (handle %s)", userState.UserID, record.Handle)
	userState.Draft = nil
	_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgRegistrationSaved, nil)
}

func draftToRegistration(draft *state.Draft) (storage.Registration, error) {
	if draft == nil || draft.Data == nil {
		return storage.Registration{}, fmt.Errorf("draft is nil")
	}
	for _, key := range []string{config.StoreKeyName, config.StoreKeyLastName, config.StoreKeyField, config.StoreKeyQuestion, config.StoreKeyUsername} {
		if draft.Data[key] == "" {
			return storage.Registration{}, fmt.Errorf("missing draft value for '%s'", key)
		}
	}
	return storage.Registration{
		Name:          draft.Data[config.StoreKeyName],
		LastName:      draft.Data[config.StoreKeyLastName],
		Field:         draft.Data[config.StoreKeyField],
		FirstQuestion: draft.Data[config.StoreKeyQuestion],
		Handle:        draft.Data[config.StoreKeyUsername],
	}, nil
}

func castEventArgs(e *fsm.Event) (*state.UserState, *Deps, bool) {
	if len(e.Args) < 2 {
		return nil, nil, false
	}
	userState, okS := e.Args[0].(*state.UserState)
	deps, okD := e.Args[1].(*Deps)
	if !okS || userState == nil || !okD || deps == nil {
		return nil, nil, false
	}
	return userState, deps, true
}
