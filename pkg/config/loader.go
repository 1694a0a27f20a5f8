package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	loadedConfig *BotConfig

	configMutex sync.RWMutex
)

// LoadConfig reads and validates the bot configuration. A missing file
// is not an error: the built-in defaults are used instead.
func LoadConfig(filePath string) error {
	log.Printf("Loading configuration from %s...", filePath)

	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file '%s' not found, using built-in defaults.", filePath)
			return SetConfig(Default())
		}
		return fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	}

	var cfg BotConfig

	err = yaml.Unmarshal(yamlFile, &cfg)
	if err != nil {
		return fmt.Errorf("failed to unmarshal YAML from '%s': %w", filePath, err)
	}

	if err := SetConfig(&cfg); err != nil {
		return err
	}

	log.Printf("Configuration loaded and validated successfully. %d registration questions found.", len(cfg.Registration))
	return nil
}

// SetConfig validates and installs the given configuration.
func SetConfig(cfg *BotConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	configMutex.Lock()
	loadedConfig = cfg
	configMutex.Unlock()
	return nil
}

func GetConfig() *BotConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if loadedConfig == nil {
		log.Println("Warning: GetConfig() called before configuration was loaded.")
	}
	return loadedConfig
}

// Default returns the built-in questionnaire and broadcast settings,
// used when no config file is present.
func Default() *BotConfig {
	return &BotConfig{
		Registration: []QuestionConfig{
			{
				ID:       "name",
				Prompt:   "Добро пожаловать! Давайте зарегистрируемся. Как вас зовут?",
				Type:     "text",
				StoreKey: StoreKeyName,
			},
			{
				ID:       "last_name",
				Prompt:   "Введите вашу фамилию:",
				Type:     "text",
				StoreKey: StoreKeyLastName,
			},
			{
				ID:       "field",
				Prompt:   "Выберите вашу интересующую сферу:",
				Type:     "buttons",
				StoreKey: StoreKeyField,
				Options: []ButtonOption{
					{Text: "Астрономия", Value: "astro"},
					{Text: "Космонавтика", Value: "space"},
					{Text: "Теоретическая физика", Value: "phys"},
					{Text: "Исследование планет", Value: "planets"},
					{Text: "Технологии", Value: "tech"},
					{Text: "История космоса", Value: "history"},
				},
			},
			{
				ID:       "question",
				Prompt:   "Напишите ваш первый вопрос:",
				Type:     "text",
				StoreKey: StoreKeyQuestion,
			},
			{
				ID:       "username",
				Prompt:   "Введите ваш username в Telegram (начинается с @):",
				Type:     "username",
				StoreKey: StoreKeyUsername,
			},
		},
		Broadcast: BroadcastConfig{
			Messages: []string{
				"🔥 Не забудь сделать что-то полезное сегодня!",
				"💡 Новый день — новые возможности!",
				"😊 Сделай паузу и отдохни!",
				"📌 Помни: главное — движение вперёд!",
				"🌟 Твои усилия не напрасны, продолжай в том же духе!",
			},
			Hour:     18,
			Minute:   0,
			Timezone: "Europe/Moscow",
		},
	}
}
