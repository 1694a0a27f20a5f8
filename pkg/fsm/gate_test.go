package fsm

import (
	"testing"

	"cosmoexpertbot/pkg/storage"
)

func TestGateAllowsStartUnconditionally(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(1, "nobody", 10)

	decision := checkGate(userState, CommandStart, env.regs)
	if !decision.Allowed {
		t.Fatalf("expected /start to pass the gate, got %+v", decision)
	}
}

func TestGateAllowsInFlightFlows(t *testing.T) {
	env := newTestEnv()

	userState := env.store.GetOrCreateUserState(2, "someone", 20)
	userState.RegistrationFSM.SetState(AwaitingStatePrefix + "name")
	if decision := checkGate(userState, "", env.regs); !decision.Allowed {
		t.Fatalf("expected mid-registration message to pass, got %+v", decision)
	}
	userState.RegistrationFSM.SetState(StateRegIdle)

	userState.AskModeFSM.SetState(StateAsking)
	if decision := checkGate(userState, "", env.regs); !decision.Allowed {
		t.Fatalf("expected mid-ask message to pass, got %+v", decision)
	}
}

func TestGateDeniesWithoutHandle(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(3, "", 30)

	decision := checkGate(userState, "", env.regs)
	if decision.Allowed || decision.DenyText != MsgNoHandle {
		t.Fatalf("expected handle denial, got %+v", decision)
	}
}

func TestGateDeniesUnregistered(t *testing.T) {
	env := newTestEnv()
	userState := env.store.GetOrCreateUserState(4, "stranger", 40)

	decision := checkGate(userState, "", env.regs)
	if decision.Allowed || decision.DenyText != MsgNotRegistered {
		t.Fatalf("expected registration denial, got %+v", decision)
	}
}

func TestGateAllowsRegisteredCaseInsensitive(t *testing.T) {
	env := newTestEnv()
	env.regs.recs = append(env.regs.recs, storage.Registration{Handle: "@Erin", Field: "Астрономия"})
	userState := env.store.GetOrCreateUserState(5, "erin", 50)

	decision := checkGate(userState, "", env.regs)
	if !decision.Allowed {
		t.Fatalf("expected registered user to pass, got %+v", decision)
	}
}

func TestGateReportsUnavailableTable(t *testing.T) {
	env := newTestEnv()
	env.regs.err = storage.ErrUnavailable
	userState := env.store.GetOrCreateUserState(6, "erin", 60)

	decision := checkGate(userState, "", env.regs)
	if decision.Allowed || decision.DenyText != MsgUsersUnavailable {
		t.Fatalf("expected unavailable-table denial, got %+v", decision)
	}
}
