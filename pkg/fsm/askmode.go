package fsm

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/looplab/fsm"
)

// NewAskModeFSM builds the two-state question-mode machine.
func NewAskModeFSM(initialState string) *fsm.FSM {

	events := fsm.Events{
		{Name: EventEnterAskMode, Src: []string{StateAskIdle}, Dst: StateAsking},
		{Name: EventCancelAskMode, Src: []string{StateAsking}, Dst: StateAskIdle},
	}

	return fsm.NewFSM(initialState, events, fsm.Callbacks{})
}

// askKeyboard is the persistent reply keyboard offering the /ask shortcut.
func askKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/ask"),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}
