package config

import (
	"fmt"
	"log"
	"sync"
)

// BotConfig describes the registration questionnaire and the daily
// broadcast settings.
type BotConfig struct {
	Registration []QuestionConfig  `yaml:"registration"`
	Broadcast    BroadcastConfig   `yaml:"broadcast"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

type QuestionConfig struct {
	ID     string `yaml:"id"`
	Prompt string `yaml:"prompt"`

	Type     string         `yaml:"type"`
	StoreKey string         `yaml:"store_key"`
	Options  []ButtonOption `yaml:"options,omitempty"`
}

type ButtonOption struct {
	Text  string `yaml:"text"`
	Value string `yaml:"value"`
}

type BroadcastConfig struct {
	Messages []string `yaml:"messages"`
	Hour     int      `yaml:"hour"`
	Minute   int      `yaml:"minute"`
	Timezone string   `yaml:"timezone"`
}

const (
	StoreKeyName     = "name"
	StoreKeyLastName = "last_name"
	StoreKeyField    = "field"
	StoreKeyQuestion = "question"
	StoreKeyUsername = "username"
)

// Store keys every questionnaire must collect. The order of the
// questions in the config defines the order of the flow.
var requiredStoreKeys = []string{
	StoreKeyName,
	StoreKeyLastName,
	StoreKeyField,
	StoreKeyQuestion,
	StoreKeyUsername,
}

func (bc *BotConfig) Validate() error {
	if bc == nil {
		return fmt.Errorf("config is nil")
	}
	if len(bc.Registration) == 0 {
		return fmt.Errorf("config validation failed: no registration questions defined")
	}

	uniqueStoreKeys := make(map[string]bool)

	for i, question := range bc.Registration {
		if question.ID == "" {
			return fmt.Errorf("config validation failed: registration question #%d has no id", i+1)
		}
		if question.Prompt == "" {
			return fmt.Errorf("config validation failed: question '%s' has no prompt", question.ID)
		}
		if question.StoreKey == "" {
			return fmt.Errorf("config validation failed: question '%s' has no store_key", question.ID)
		}

		if uniqueStoreKeys[question.StoreKey] {
			return fmt.Errorf("config validation failed: duplicate store_key '%s' (in question '%s')", question.StoreKey, question.ID)
		}
		uniqueStoreKeys[question.StoreKey] = true

		if err := validateQuestionWithStrategy(question); err != nil {
			return err
		}
	}

	for _, key := range requiredStoreKeys {
		if !uniqueStoreKeys[key] {
			return fmt.Errorf("config validation failed: registration is missing question with store_key '%s'", key)
		}
	}

	return bc.Broadcast.validate()
}

func (b BroadcastConfig) validate() error {
	if len(b.Messages) == 0 {
		return fmt.Errorf("config validation failed: broadcast has no messages")
	}
	if b.Hour < 0 || b.Hour > 23 {
		return fmt.Errorf("config validation failed: broadcast hour %d out of range", b.Hour)
	}
	if b.Minute < 0 || b.Minute > 59 {
		return fmt.Errorf("config validation failed: broadcast minute %d out of range", b.Minute)
	}
	if b.Timezone == "" {
		return fmt.Errorf("config validation failed: broadcast timezone is empty")
	}
	return nil
}

// QuestionByStoreKey returns the question collecting the given key.
func (bc *BotConfig) QuestionByStoreKey(key string) (QuestionConfig, bool) {
	for _, q := range bc.Registration {
		if q.StoreKey == key {
			return q, true
		}
	}
	return QuestionConfig{}, false
}

type QuestionValidator func(question QuestionConfig) error

var (
	questionValidator QuestionValidator
	validatorMu       sync.RWMutex
)

// RegisterQuestionValidator lets the questions package plug strategy-aware
// validation into config loading without an import cycle.
func RegisterQuestionValidator(fn QuestionValidator) {
	validatorMu.Lock()
	defer validatorMu.Unlock()
	questionValidator = fn
}

func validateQuestionWithStrategy(question QuestionConfig) error {
	fn := currentValidator()
	if fn == nil {
		switch question.Type {
		case "text", "username":
			if len(question.Options) > 0 {
				log.Printf("Warning: question '%s' is type '%s' but has options defined", question.ID, question.Type)
			}
			return nil
		case "buttons":
			if len(question.Options) == 0 {
				return fmt.Errorf("config validation failed: question '%s' is type 'buttons' but has no options", question.ID)
			}
			for j, option := range question.Options {
				if option.Text == "" {
					return fmt.Errorf("config validation failed: option #%d for question '%s' has no text", j+1, question.ID)
				}
				if option.Value == "" {
					return fmt.Errorf("config validation failed: option #%d for question '%s' has no value", j+1, question.ID)
				}
			}
			return nil
		default:
			return fmt.Errorf("config validation failed: question '%s' has unknown type '%s'", question.ID, question.Type)
		}
	}
	return fn(question)
}

func currentValidator() QuestionValidator {
	validatorMu.RLock()
	defer validatorMu.RUnlock()
	return questionValidator
}
