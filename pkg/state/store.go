package state

import (
	"log"
	"sync"
)

type Store struct {
	users      map[int64]*UserState
	fsmCreator FSMCreator
	mu         sync.Mutex
}

func NewStore(f FSMCreator) *Store {
	return &Store{
		users:      make(map[int64]*UserState),
		fsmCreator: f,
	}
}

// GetOrCreateUserState returns the state entry for userID, creating it
// with fresh FSM instances on first contact. Handle and chat id are
// refreshed on every call since users can rename themselves.
func (s *Store) GetOrCreateUserState(userID int64, handle string, chatID int64) *UserState {

	s.mu.Lock()
	defer s.mu.Unlock()

	userState, exists := s.users[userID]

	if exists {
		// Handle/ChatID are read by update handlers under the per-user
		// Mu, so the refresh must hold it too.
		userState.Mu.Lock()
		if userState.Handle != handle {
			log.Printf("Updating handle for user %d: '%s' -> '%s'", userID, userState.Handle, handle)
			userState.Handle = handle
		}
		if chatID != 0 {
			userState.ChatID = chatID
		}
		userState.Mu.Unlock()
		return userState
	}

	log.Printf("Creating new state for user %d ('%s')", userID, handle)

	registrationFSM := s.fsmCreator.NewRegistrationFSM()
	askModeFSM := s.fsmCreator.NewAskModeFSM()
	if registrationFSM == nil || askModeFSM == nil {
		log.Printf("CRITICAL: Failed to initialize FSM instances for user %d", userID)
	}

	newUserState := &UserState{
		UserID:          userID,
		ChatID:          chatID,
		Handle:          handle,
		RegistrationFSM: registrationFSM,
		AskModeFSM:      askModeFSM,
		Draft:           nil,
	}

	s.users[userID] = newUserState

	return newUserState
}
