package fsm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"text/template"

	"cosmoexpertbot/pkg/llm"
	"cosmoexpertbot/pkg/state"
	"cosmoexpertbot/pkg/storage"
)

// Answers below this score are routed to a human expert.
const confidenceFloor = 0.2

type escalationPayload struct {
	UserHandle string
	Question   string
}

var escalationTpl = template.Must(template.New("escalation").Parse(
	`Пользователь @{{.UserHandle}} задал вопрос: {{.Question}}. Пожалуйста, дайте ответ в ЛС пользователю.`))

// handleAskQuestion runs one question through the routing pipeline:
// tally, model call, history append, confidence scoring, and either a
// direct answer or an expert escalation.
func handleAskQuestion(ctx context.Context, userState *state.UserState, deps *Deps, question string) {

	userState.QuestionCount++

	prompt := llm.BuildPrompt(userState.History, question)

	answer, err := deps.Model.Chat(ctx, prompt)
	if err != nil {
		log.Printf("[handleAskQuestion] Model call failed for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgModelUnavailable, nil)
		return
	}

	userState.History = append(userState.History,
		llm.Turn{Role: llm.RoleUser, Content: question},
		llm.Turn{Role: llm.RoleAssistant, Content: answer},
	)

	confidence := llm.Confidence(answer)
	log.Printf("[handleAskQuestion] User %d: answer %d words, confidence %.4f", userState.UserID, llm.WordCount(answer), confidence)

	if confidence < confidenceFloor {
		escalateToExpert(ctx, userState, deps, question)
	} else {
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, answer, nil)
	}

	if userState.QuestionCount == ratingPromptThreshold {
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgRatingPrompt, nil)
	}
}

// escalateToExpert resolves the asker's declared field and forwards the
// question to the first matching roster entry.
func escalateToExpert(ctx context.Context, userState *state.UserState, deps *Deps, question string) {
	_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgExpertEscalation, nil)

	record, err := deps.Registrations.FindByHandle(userState.Handle)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgNoFieldOnRecord, nil)
		return
	case errors.Is(err, storage.ErrUnavailable):
		log.Printf("[escalateToExpert] Registration table unavailable for user %d", userState.UserID)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgUsersUnavailable, nil)
		return
	case err != nil:
		log.Printf("[escalateToExpert] Error looking up field for user %d: %v", userState.UserID, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgNoFieldOnRecord, nil)
		return
	}

	expert, err := deps.Experts.FindByField(record.Field)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("[escalateToExpert] No expert covers field '%s' for user %d", record.Field, userState.UserID)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgNoExpertFound, nil)
		return
	case errors.Is(err, storage.ErrUnavailable):
		log.Printf("[escalateToExpert] Expert roster unavailable")
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgRosterUnavailable, nil)
		return
	case err != nil:
		log.Printf("[escalateToExpert] Error scanning roster for field '%s': %v", record.Field, err)
		_, _ = deps.Bot.SendMessage(ctx, userState.ChatID, MsgNoExpertFound, nil)
		return
	}

	text, err := renderEscalation(userState.Handle, question)
	if err != nil {
		log.Printf("[escalateToExpert] Render error for user %d: %v", userState.UserID, err)
		return
	}

	if _, err := deps.Bot.SendToHandle(ctx, expert.Handle, text); err != nil {
		log.Printf("[escalateToExpert] Error forwarding question to expert %s: %v", expert.Handle, err)
	} else {
		log.Printf("[escalateToExpert] Question from user %d forwarded to expert %s", userState.UserID, expert.Handle)
	}
}

func renderEscalation(userHandle, question string) (string, error) {
	payload := escalationPayload{
		UserHandle: strings.TrimPrefix(userHandle, "@"),
		Question:   question,
	}
	var buf bytes.Buffer
	if err := escalationTpl.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
