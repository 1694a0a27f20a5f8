package state

import (
	"sync"

	"cosmoexpertbot/pkg/llm"
	"cosmoexpertbot/pkg/ports/botport"

	"github.com/looplab/fsm"
)

// Draft buffers partially collected registration answers until the
// final step persists them.
type Draft struct {
	Data map[string]string
}

func NewDraft() *Draft {
	return &Draft{
		Data: make(map[string]string),
	}
}

// UserState is everything the conversation core tracks per user. The
// zero value is not usable; the store builds instances with both FSMs
// attached. Mu is held for the whole handling of one update.
type UserState struct {
	UserID          int64
	ChatID          int64
	Handle          string
	RegistrationFSM *fsm.FSM
	AskModeFSM      *fsm.FSM
	Draft           *Draft
	History         []llm.Turn
	QuestionCount   int
	LastMessageID   int
	LastPrompt      botport.BotMessage
	Mu              sync.Mutex
}
