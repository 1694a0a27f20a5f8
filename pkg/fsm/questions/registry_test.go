package questions

import (
	"testing"

	"cosmoexpertbot/pkg/config"
)

func TestRegisterBuiltinsRegistersAllTypes(t *testing.T) {
	resetRegistryForTests()
	RegisterBuiltins()

	for _, name := range []string{TypeText, TypeButtons, TypeUsername} {
		if Get(name) == nil {
			t.Fatalf("expected strategy '%s' to be registered", name)
		}
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	resetRegistryForTests()
	RegisterBuiltins()

	if Get("TEXT") == nil {
		t.Fatalf("expected lookup to ignore case")
	}
	if Get(" buttons ") == nil {
		t.Fatalf("expected lookup to ignore surrounding spaces")
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	resetRegistryForTests()
	MustRegister(NewTextStrategy())

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	MustRegister(NewTextStrategy())
}

func TestRegisteredValidatorRejectsUnknownType(t *testing.T) {
	resetRegistryForTests()
	RegisterBuiltins()

	cfg := &config.BotConfig{
		Registration: []config.QuestionConfig{
			{ID: "q1", Prompt: "?", Type: "slider", StoreKey: "name"},
		},
		Broadcast: config.BroadcastConfig{
			Messages: []string{"hi"},
			Hour:     18,
			Timezone: "Europe/Moscow",
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown question type")
	}
}
