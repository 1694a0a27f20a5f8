package fsm

import (
	"context"
	"log"
	"strings"

	"cosmoexpertbot/pkg/fsm/questions"
	"cosmoexpertbot/pkg/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleUpdate is the entry point for one inbound Telegram update. The
// pipeline is fixed: resolve user state, log the message, apply the
// registration gate, then dispatch on the user's flow state.
func HandleUpdate(ctx context.Context, update tgbotapi.Update, deps *Deps, store *state.Store) {

	var userID int64
	var chatID int64
	var from *tgbotapi.User

	if update.Message != nil {
		if update.Message.From == nil {
			log.Printf("Warning: Received message with nil From field")
			return
		}
		from = update.Message.From
		chatID = update.Message.Chat.ID
	} else if update.CallbackQuery != nil {
		if update.CallbackQuery.From == nil {
			log.Printf("Warning: Received callback with nil From field")
			return
		}
		from = update.CallbackQuery.From
		if update.CallbackQuery.Message == nil || update.CallbackQuery.Message.Chat == nil {
			log.Printf("Warning: Received callback query with nil Message or Chat field")
			return
		}
		chatID = update.CallbackQuery.Message.Chat.ID
	} else {
		log.Printf("Ignoring update type: %v", update)
		return
	}

	userID = from.ID

	userState := store.GetOrCreateUserState(userID, from.UserName, chatID)
	if userState == nil {
		log.Printf("Error: Failed to get or create user state for user %d", userID)
		if chatID != 0 {
			_, _ = deps.Bot.SendMessage(ctx, chatID, MsgInternalError, nil)
		}
		return
	}

	userState.Mu.Lock()
	defer userState.Mu.Unlock()

	if update.Message != nil {
		logInbound(deps.Log, update.Message)

		decision := checkGate(userState, update.Message.Command(), deps.Registrations)
		if !decision.Allowed {
			log.Printf("[HandleUpdate] Gate denied message from user %d ('%s')", userID, userState.Handle)
			_, _ = deps.Bot.SendMessage(ctx, chatID, decision.DenyText, nil)
			return
		}

		handleMessage(ctx, update.Message, userState, deps)
	} else if update.CallbackQuery != nil {
		handleCallbackQuery(ctx, update.CallbackQuery, userState, deps)
	}
}

func handleMessage(ctx context.Context, message *tgbotapi.Message, userState *state.UserState, deps *Deps) {
	chatID := message.Chat.ID
	text := message.Text

	if message.IsCommand() {
		switch message.Command() {
		case CommandStart:
			startRegistration(ctx, userState, deps, chatID)
		case CommandAsk:
			enterAskMode(ctx, userState, deps, chatID)
		case CommandCancel:
			cancelFlows(ctx, userState, deps, chatID)
		default:
			_, _ = deps.Bot.SendMessage(ctx, chatID, MsgUnknownCommand, nil)
		}
		return
	}

	if _, _, inFlow := currentQuestion(deps.Config, userState.RegistrationFSM.Current()); inFlow {
		handleRegistrationText(ctx, userState, deps, text)
		return
	}

	if userState.AskModeFSM.Current() == StateAsking {
		handleAskQuestion(ctx, userState, deps, text)
		return
	}

	_, _ = deps.Bot.SendMessage(ctx, chatID, MsgFallback, askKeyboard())
}

// startRegistration records the chat identity and kicks off (or
// restarts) the questionnaire.
func startRegistration(ctx context.Context, userState *state.UserState, deps *Deps, chatID int64) {
	if err := deps.Directory.Add(chatID); err != nil {
		log.Printf("[startRegistration] Error recording chat id %d: %v", chatID, err)
	}

	if userState.AskModeFSM.Current() != StateAskIdle {
		log.Printf("[startRegistration] User %d used /start while asking, leaving ask mode", userState.UserID)
		userState.AskModeFSM.SetState(StateAskIdle)
	}

	if userState.RegistrationFSM.Current() != StateRegIdle {
		log.Printf("[startRegistration] User %d used /start mid-flow (%s), restarting registration", userState.UserID, userState.RegistrationFSM.Current())
		userState.RegistrationFSM.SetState(StateRegIdle)
	}

	userState.Draft = state.NewDraft()
	userState.LastMessageID = 0

	if err := userState.RegistrationFSM.Event(ctx, EventStartRegistration, userState, deps); err != nil {
		log.Printf("[startRegistration] Error triggering start for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, chatID, MsgInternalError, nil)
		if userState.RegistrationFSM.Current() != StateRegIdle {
			userState.RegistrationFSM.SetState(StateRegIdle)
		}
	}
}

func enterAskMode(ctx context.Context, userState *state.UserState, deps *Deps, chatID int64) {
	if userState.RegistrationFSM.Current() != StateRegIdle {
		_, _ = deps.Bot.SendMessage(ctx, chatID, MsgFinishRegistrationFirst, nil)
		return
	}

	err := userState.AskModeFSM.Event(ctx, EventEnterAskMode)
	if err != nil && !isNoTransitionError(err) && !isInvalidEventError(err) {
		log.Printf("[enterAskMode] Error entering ask mode for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, chatID, MsgInternalError, nil)
		return
	}
	// /ask while already asking just repeats the instructions.
	_, _ = deps.Bot.SendMessage(ctx, chatID, MsgAskModeEntered, nil)
}

// cancelFlows clears whatever flow the user is in. An in-flight model
// call is not interrupted, only the state is reset.
func cancelFlows(ctx context.Context, userState *state.UserState, deps *Deps, chatID int64) {
	if userState.RegistrationFSM.Current() != StateRegIdle {
		if err := userState.RegistrationFSM.Event(ctx, EventForceExit, userState, deps); err != nil {
			log.Printf("[cancelFlows] Error force-exiting registration for user %d: %v", userState.UserID, err)
			userState.RegistrationFSM.SetState(StateRegIdle)
			userState.Draft = nil
		}
		_, _ = deps.Bot.SendMessage(ctx, chatID, MsgRegistrationReset, nil)
		return
	}

	if userState.AskModeFSM.Current() != StateAskIdle {
		if err := userState.AskModeFSM.Event(ctx, EventCancelAskMode); err != nil {
			log.Printf("[cancelFlows] Error leaving ask mode for user %d: %v", userState.UserID, err)
			userState.AskModeFSM.SetState(StateAskIdle)
		}
	}

	_, _ = deps.Bot.SendMessage(ctx, chatID, MsgAskModeLeft, askKeyboard())
}

func handleRegistrationText(ctx context.Context, userState *state.UserState, deps *Deps, text string) {
	question, _, ok := currentQuestion(deps.Config, userState.RegistrationFSM.Current())
	if !ok {
		log.Printf("[handleRegistrationText] Error: no question for state '%s' (user %d)", userState.RegistrationFSM.Current(), userState.UserID)
		return
	}

	strategy := questions.Get(question.Type)
	if strategy == nil {
		log.Printf("[handleRegistrationText] Error: no strategy for question type '%s'", question.Type)
		_ = userState.RegistrationFSM.Event(ctx, EventForceExit, userState, deps)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
		return
	}

	answerCtx := buildAnswerContext(userState, deps, question, "")
	result, err := strategy.HandleAnswer(answerCtx, questions.AnswerInput{
		Source: questions.InputSourceText,
		Text:   text,
	})
	if err != nil {
		log.Printf("[handleRegistrationText] Error processing answer for user %d: %v", userState.UserID, err)
		_ = userState.RegistrationFSM.Event(ctx, EventForceExit, userState, deps)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgInternalError, nil)
		return
	}

	handleAnswerResult(ctx, result, userState, deps, "", 0)
}

func handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery, userState *state.UserState, deps *Deps) {
	messageID := query.Message.MessageID
	data := query.Data

	if err := deps.Bot.AnswerCallback(ctx, query.ID, ""); err != nil {
		log.Printf("[handleCallbackQuery] Error answering callback %s for user %d: %v", query.ID, userState.UserID, err)
	}

	if !strings.HasPrefix(data, CallbackAnswerPrefix) {
		log.Printf("[handleCallbackQuery] Unknown callback data '%s' from user %d", data, userState.UserID)
		return
	}
	value := strings.TrimPrefix(data, CallbackAnswerPrefix)

	answerParts := strings.SplitN(value, ":", 2)
	if len(answerParts) != 2 {
		log.Printf("[handleCallbackQuery] Error: invalid answer callback format '%s' for user %d", value, userState.UserID)
		return
	}
	questionID := answerParts[0]
	optionValue := answerParts[1]

	question, _, ok := currentQuestion(deps.Config, userState.RegistrationFSM.Current())
	if !ok {
		log.Printf("[handleCallbackQuery] Warning: callback from user %d outside registration flow", userState.UserID)
		return
	}
	if question.ID != questionID {
		log.Printf("[handleCallbackQuery] Warning: answer for question '%s', but current question is '%s' (user %d). Ignoring.", questionID, question.ID, userState.UserID)
		_ = deps.Bot.AnswerCallback(ctx, query.ID, "⚠️ Ответ на предыдущий вопрос?")
		return
	}

	strategy := questions.Get(question.Type)
	if strategy == nil {
		log.Printf("[handleCallbackQuery] Error: no strategy for question type '%s'", question.Type)
		_ = userState.RegistrationFSM.Event(ctx, EventForceExit, userState, deps)
		return
	}

	answerCtx := buildAnswerContext(userState, deps, question, query.ID)
	result, err := strategy.HandleAnswer(answerCtx, questions.AnswerInput{
		Source:       questions.InputSourceCallback,
		CallbackData: optionValue,
		MessageID:    messageID,
	})
	if err != nil {
		log.Printf("[handleCallbackQuery] Error processing callback answer for user %d: %v", userState.UserID, err)
		_ = userState.RegistrationFSM.Event(ctx, EventForceExit, userState, deps)
		return
	}

	handleAnswerResult(ctx, result, userState, deps, query.ID, messageID)
}
