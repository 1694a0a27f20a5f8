package config

import (
	"fmt"
	"os"
)

// Env carries process-level settings that never belong in the YAML
// config: transport and model credentials plus storage locations.
type Env struct {
	BotToken   string
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	DataDir    string
	SQLiteDSN  string
}

// EnvFromProcess reads the environment. Both secrets are mandatory,
// everything else falls back to a sensible default.
func EnvFromProcess() (Env, error) {
	env := Env{
		BotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMModel:   os.Getenv("LLM_MODEL"),
		DataDir:    os.Getenv("DATA_DIR"),
		SQLiteDSN:  os.Getenv("SQLITE_DSN"),
	}

	if env.BotToken == "" {
		return Env{}, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if env.LLMAPIKey == "" {
		return Env{}, fmt.Errorf("LLM_API_KEY environment variable not set")
	}
	if env.DataDir == "" {
		env.DataDir = "."
	}
	return env, nil
}
