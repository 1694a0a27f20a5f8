package fsm

import (
	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/llm"
	"cosmoexpertbot/pkg/ports/botport"
	"cosmoexpertbot/pkg/storage"
)

// Deps bundles every collaborator the conversation core needs. No
// component reaches for ambient globals; main wires one of these and
// hands it to HandleUpdate.
type Deps struct {
	Bot           botport.BotPort
	Config        *config.BotConfig
	Directory     storage.ChatDirectory
	Registrations storage.RegistrationRepo
	Experts       storage.ExpertRoster
	Log           storage.MessageLog
	Model         llm.Client
}
