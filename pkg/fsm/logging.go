package fsm

import (
	"fmt"
	"log"
	"strings"
	"time"

	"cosmoexpertbot/pkg/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// logInbound appends one entry to the message log for every inbound
// text message, before gating. A write failure is reported and
// swallowed, it must never block dispatch.
func logInbound(messageLog storage.MessageLog, message *tgbotapi.Message) {
	if messageLog == nil || message == nil || message.Text == "" {
		return
	}

	sender := ""
	if message.From != nil {
		sender = message.From.UserName
		if sender == "" {
			sender = fmt.Sprintf("user_%d", message.From.ID)
		}
	}

	entry := storage.LogEntry{
		Sender:    sender,
		Timestamp: time.Now(),
		Text:      strings.TrimSpace(message.Text),
	}
	if err := messageLog.Append(entry); err != nil {
		log.Printf("[logInbound] Error writing log entry for '%s': %v", sender, err)
	}
}
