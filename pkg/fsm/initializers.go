package fsm

import (
	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/state"

	"github.com/looplab/fsm"
)

type fsmCreatorImpl struct {
	cfg *config.BotConfig
}

func (fc *fsmCreatorImpl) NewRegistrationFSM() *fsm.FSM {
	return NewRegistrationFSM(fc.cfg, StateRegIdle)
}

func (fc *fsmCreatorImpl) NewAskModeFSM() *fsm.FSM {
	return NewAskModeFSM(StateAskIdle)
}

func NewFSMCreator(cfg *config.BotConfig) state.FSMCreator {
	return &fsmCreatorImpl{cfg: cfg}
}
