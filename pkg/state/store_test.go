package state

import (
	"sync"
	"testing"

	"github.com/looplab/fsm"
)

type stubCreator struct{}

func (stubCreator) NewRegistrationFSM() *fsm.FSM {
	return fsm.NewFSM("reg_idle", fsm.Events{}, fsm.Callbacks{})
}

func (stubCreator) NewAskModeFSM() *fsm.FSM {
	return fsm.NewFSM("ask_idle", fsm.Events{}, fsm.Callbacks{})
}

func TestGetOrCreateUserStateReusesEntry(t *testing.T) {
	store := NewStore(stubCreator{})

	first := store.GetOrCreateUserState(1, "ann", 100)
	second := store.GetOrCreateUserState(1, "ann", 100)

	if first != second {
		t.Fatalf("expected the same state entry on repeat lookup")
	}
	if first.RegistrationFSM == nil || first.AskModeFSM == nil {
		t.Fatalf("expected both FSM instances attached")
	}
}

func TestGetOrCreateUserStateRefreshesHandleAndChat(t *testing.T) {
	store := NewStore(stubCreator{})

	first := store.GetOrCreateUserState(1, "ann", 100)
	first.Draft = NewDraft()
	first.Draft.Data["name"] = "Анна"

	renamed := store.GetOrCreateUserState(1, "ann_new", 200)

	if renamed != first {
		t.Fatalf("expected the same entry after rename")
	}
	if renamed.Handle != "ann_new" || renamed.ChatID != 200 {
		t.Fatalf("expected handle and chat refreshed, got %+v", renamed)
	}
	if renamed.Draft.Data["name"] != "Анна" {
		t.Fatalf("expected in-flight draft preserved across rename")
	}
}

func TestConcurrentRefreshAndReadAreSynchronized(t *testing.T) {
	store := NewStore(stubCreator{})
	userState := store.GetOrCreateUserState(1, "ann", 100)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			userState.Mu.Lock()
			_ = userState.Handle
			_ = userState.ChatID
			userState.Mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.GetOrCreateUserState(1, "ann_renamed", 200)
		}
	}()
	wg.Wait()

	refreshed := store.GetOrCreateUserState(1, "ann_renamed", 200)
	if refreshed.Handle != "ann_renamed" || refreshed.ChatID != 200 {
		t.Fatalf("expected refreshed fields, got %+v", refreshed)
	}
}

func TestStatesAreIsolatedPerUser(t *testing.T) {
	store := NewStore(stubCreator{})

	a := store.GetOrCreateUserState(1, "ann", 100)
	b := store.GetOrCreateUserState(2, "bob", 200)

	if a == b {
		t.Fatalf("expected distinct entries per user")
	}
	if a.RegistrationFSM == b.RegistrationFSM {
		t.Fatalf("expected distinct FSM instances per user")
	}
}
