package fsm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cosmoexpertbot/pkg/storage"
)

func TestConfidentAnswerIsRelayedVerbatim(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(20, "erin", 200)

	answer := strings.TrimSpace(strings.Repeat("слово ", 16))
	env.model.Answers = []string{answer}

	handleAskQuestion(context.Background(), userState, env.deps, "Что такое квазар?")

	sent := env.adapter.LastCall("send_message")
	if sent == nil || sent.Text != answer {
		t.Fatalf("expected 16-word answer relayed verbatim, got %+v", sent)
	}
	if call := env.adapter.LastCall("send_to_handle"); call != nil {
		t.Fatalf("expected no escalation for confident answer, got %+v", call)
	}
	if userState.QuestionCount != 1 {
		t.Fatalf("expected tally incremented, got %d", userState.QuestionCount)
	}
	if len(userState.History) != 2 {
		t.Fatalf("expected question and answer in history, got %d turns", len(userState.History))
	}
}

func TestShortAnswerEscalatesToExpert(t *testing.T) {
	env := newTestEnv()
	env.regs.recs = append(env.regs.recs, registeredErin())
	env.experts.experts = append(env.experts.experts, storage.Expert{
		ID:     "1",
		Handle: "@prof_orlov",
		Fields: []string{"Астрономия", "Космонавтика"},
	})
	userState := env.store.GetOrCreateUserState(21, "erin", 210)

	// 15 words score just below the 0.2 floor.
	env.model.Answers = []string{strings.TrimSpace(strings.Repeat("слово ", 15))}

	handleAskQuestion(context.Background(), userState, env.deps, "Что внутри чёрной дыры?")

	notice := env.adapter.LastCall("send_message")
	if notice == nil || notice.Text != MsgExpertEscalation {
		t.Fatalf("expected escalation notice to the user, got %+v", notice)
	}

	forwarded := env.adapter.LastCall("send_to_handle")
	if forwarded == nil || forwarded.Handle != "@prof_orlov" {
		t.Fatalf("expected question forwarded to expert, got %+v", forwarded)
	}
	want := "Пользователь @erin задал вопрос: Что внутри чёрной дыры?. Пожалуйста, дайте ответ в ЛС пользователю."
	if forwarded.Text != want {
		t.Fatalf("unexpected escalation text:\n got %q\nwant %q", forwarded.Text, want)
	}
}

func TestEscalationWithoutExpertInformsUser(t *testing.T) {
	env := newTestEnv()
	env.regs.recs = append(env.regs.recs, registeredErin())
	userState := env.store.GetOrCreateUserState(22, "erin", 220)

	env.model.Answers = []string{"Не знаю."}

	handleAskQuestion(context.Background(), userState, env.deps, "Вопрос?")

	last := env.adapter.LastCall("send_message")
	if last == nil || last.Text != MsgNoExpertFound {
		t.Fatalf("expected no-expert message, got %+v", last)
	}
	if call := env.adapter.LastCall("send_to_handle"); call != nil {
		t.Fatalf("expected nothing forwarded, got %+v", call)
	}
}

func TestEscalationWithoutRegistrationInformsUser(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(23, "ghost", 230)

	env.model.Answers = []string{"Не знаю."}

	handleAskQuestion(context.Background(), userState, env.deps, "Вопрос?")

	last := env.adapter.LastCall("send_message")
	if last == nil || last.Text != MsgNoFieldOnRecord {
		t.Fatalf("expected missing-field message, got %+v", last)
	}
}

func TestModelFailureKeepsTally(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(24, "erin", 240)

	env.model.Err = errors.New("backend down")

	handleAskQuestion(context.Background(), userState, env.deps, "Вопрос?")

	last := env.adapter.LastCall("send_message")
	if last == nil || last.Text != MsgModelUnavailable {
		t.Fatalf("expected model-unavailable message, got %+v", last)
	}
	if userState.QuestionCount != 1 {
		t.Fatalf("expected tally to stand after failure, got %d", userState.QuestionCount)
	}
	if len(userState.History) != 0 {
		t.Fatalf("expected no history recorded for failed call, got %d", len(userState.History))
	}
}

func TestRatingPromptAfterFifthQuestion(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(25, "erin", 250)
	userState.QuestionCount = ratingPromptThreshold - 1

	env.model.Answers = []string{strings.Repeat("слово ", 30)}

	handleAskQuestion(context.Background(), userState, env.deps, "Пятый вопрос?")

	sends := env.adapter.CallsFor("send_message")
	if len(sends) < 2 || sends[len(sends)-1].Text != MsgRatingPrompt {
		t.Fatalf("expected rating prompt after fifth question, got %+v", sends)
	}

	// The sixth question must not prompt again.
	handleAskQuestion(context.Background(), userState, env.deps, "Шестой вопрос?")
	for _, call := range env.adapter.CallsFor("send_message")[len(sends):] {
		if call.Text == MsgRatingPrompt {
			t.Fatalf("expected rating prompt exactly once")
		}
	}
}

func TestPromptCarriesHistory(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(26, "erin", 260)

	env.model.Answers = []string{strings.Repeat("а ", 20), strings.Repeat("б ", 20)}

	handleAskQuestion(context.Background(), userState, env.deps, "Первый?")
	handleAskQuestion(context.Background(), userState, env.deps, "Второй?")

	prompt := env.model.LastPrompt()
	if !strings.Contains(prompt, "user: Первый?") {
		t.Fatalf("expected prior question in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "Пользователь: Второй?") {
		t.Fatalf("expected new question at the end of prompt, got %q", prompt)
	}
}
