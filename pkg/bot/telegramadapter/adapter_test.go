package telegramadapter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cosmoexpertbot/pkg/ports/botport"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestAdapterSendMessageSuccess(t *testing.T) {
	fc := &fakeClient{
		sendFn: func(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
			return tgbotapi.Message{
				MessageID: 42,
				Text:      text,
				Chat:      &tgbotapi.Chat{ID: chatID},
			}, nil
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := adapter.SendMessage(context.Background(), 7, "hello", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ChatID != 7 || msg.MessageID != 42 {
		t.Fatalf("unexpected bot message: %+v", msg)
	}
	if msg.Transport != "telegram" {
		t.Fatalf("expected transport 'telegram', got %s", msg.Transport)
	}
	if msg.Payload != "hello" {
		t.Fatalf("expected payload 'hello', got %s", msg.Payload)
	}
}

func TestAdapterSendBoldEscapesAndWraps(t *testing.T) {
	var sent string
	fc := &fakeClient{
		htmlFn: func(chatID int64, text string) (tgbotapi.Message, error) {
			sent = text
			return tgbotapi.Message{MessageID: 1, Text: text, Chat: &tgbotapi.Chat{ID: chatID}}, nil
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := adapter.SendBold(context.Background(), 1, "a < b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(sent, "<b>") || !strings.HasSuffix(sent, "</b>") {
		t.Fatalf("expected bold wrapping, got %q", sent)
	}
	if strings.Contains(sent, "a < b") {
		t.Fatalf("expected HTML-escaped payload, got %q", sent)
	}
}

func TestAdapterSendMessageWrapsRateLimitError(t *testing.T) {
	expectedErr := errors.New("Too Many Requests: retry after 3")
	fc := &fakeClient{
		sendFn: func(int64, string, interface{}) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, expectedErr
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = adapter.SendMessage(context.Background(), 1, "hi", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var be *botport.BotError
	if !errors.As(err, &be) {
		t.Fatalf("expected BotError, got %T", err)
	}
	if be.Code != "rate_limited" {
		t.Fatalf("expected rate_limited code, got %s", be.Code)
	}
	if be.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s, got %v", be.RetryAfter)
	}
}

func TestAdapterClassifiesChatNotFound(t *testing.T) {
	fc := &fakeClient{
		sendFn: func(int64, string, interface{}) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = adapter.SendMessage(context.Background(), 1, "hi", nil)
	if !botport.IsCode(err, "chat_not_found") {
		t.Fatalf("expected chat_not_found, got %v", err)
	}
}

func TestAdapterEditMessageRejectsInvalidMarkup(t *testing.T) {
	adapter, err := New(&fakeClient{}, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = adapter.EditMessage(context.Background(), 1, 2, "text", "bad markup")
	if err == nil {
		t.Fatalf("expected error")
	}
	var be *botport.BotError
	if !errors.As(err, &be) {
		t.Fatalf("expected BotError, got %T", err)
	}
	if be.Code != "bad_payload" {
		t.Fatalf("expected bad_payload, got %s", be.Code)
	}
}

func TestAdapterHonorsCancelledContext(t *testing.T) {
	adapter, err := New(&fakeClient{}, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = adapter.SendMessage(ctx, 1, "hi", nil)
	if !botport.IsCode(err, "context_canceled") {
		t.Fatalf("expected context_canceled, got %v", err)
	}
}

type fakeClient struct {
	sendFn   func(chatID int64, text string, markup interface{}) (tgbotapi.Message, error)
	htmlFn   func(chatID int64, text string) (tgbotapi.Message, error)
	handleFn func(handle string, text string) (tgbotapi.Message, error)
	editFn   func(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	cbFn     func(callbackID string, text string) error
}

func (f *fakeClient) SendMessage(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
	if f.sendFn == nil {
		return tgbotapi.Message{}, nil
	}
	return f.sendFn(chatID, text, markup)
}

func (f *fakeClient) SendHTML(chatID int64, text string) (tgbotapi.Message, error) {
	if f.htmlFn == nil {
		return tgbotapi.Message{}, nil
	}
	return f.htmlFn(chatID, text)
}

func (f *fakeClient) SendToHandle(handle string, text string) (tgbotapi.Message, error) {
	if f.handleFn == nil {
		return tgbotapi.Message{}, nil
	}
	return f.handleFn(handle, text)
}

func (f *fakeClient) EditMessageText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	if f.editFn == nil {
		return tgbotapi.Message{}, nil
	}
	return f.editFn(chatID, messageID, text, markup)
}

func (f *fakeClient) AnswerCallback(callbackID string, text string) error {
	if f.cbFn == nil {
		return nil
	}
	return f.cbFn(callbackID, text)
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...any) {
	l.t.Logf(format, args...)
}
