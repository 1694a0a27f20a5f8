package fsm

import (
	"errors"
	"log"

	"cosmoexpertbot/pkg/state"
	"cosmoexpertbot/pkg/storage"
)

// gateDecision is the outcome of the registration gate for one message.
type gateDecision struct {
	Allowed  bool
	DenyText string
}

var allow = gateDecision{Allowed: true}

func deny(text string) gateDecision {
	return gateDecision{DenyText: text}
}

// checkGate decides whether a non-registration message may be
// dispatched. The checks run in a fixed order:
//  1. /start always passes.
//  2. Any non-idle flow state passes, so an in-flight registration or
//     question session can finish.
//  3. Everything else requires a Telegram handle and a matching
//     registration record.
func checkGate(userState *state.UserState, command string, repo storage.RegistrationRepo) gateDecision {
	if command == CommandStart {
		return allow
	}

	if userState.RegistrationFSM.Current() != StateRegIdle || userState.AskModeFSM.Current() != StateAskIdle {
		return allow
	}

	if userState.Handle == "" {
		return deny(MsgNoHandle)
	}

	_, err := repo.FindByHandle(userState.Handle)
	switch {
	case err == nil:
		return allow
	case errors.Is(err, storage.ErrNotFound):
		return deny(MsgNotRegistered)
	case errors.Is(err, storage.ErrUnavailable):
		log.Printf("[checkGate] Registration table unavailable for user %d", userState.UserID)
		return deny(MsgUsersUnavailable)
	default:
		log.Printf("[checkGate] Error looking up handle '%s': %v", userState.Handle, err)
		return deny(MsgUsersUnavailable)
	}
}
