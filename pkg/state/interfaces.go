package state

import "github.com/looplab/fsm"

type FSMCreator interface {
	NewRegistrationFSM() *fsm.FSM
	NewAskModeFSM() *fsm.FSM
}
