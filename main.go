package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cosmoexpertbot/pkg/bot"
	"cosmoexpertbot/pkg/bot/telegramadapter"
	"cosmoexpertbot/pkg/broadcast"
	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/fsm"
	"cosmoexpertbot/pkg/fsm/questions"
	"cosmoexpertbot/pkg/llm"
	"cosmoexpertbot/pkg/state"
	"cosmoexpertbot/pkg/storage"
	"cosmoexpertbot/pkg/storage/filestore"
	"cosmoexpertbot/pkg/storage/sqlitestore"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	questions.RegisterBuiltins()

	cfgPath := "bot_config.yaml"
	if err := config.LoadConfig(cfgPath); err != nil {
		log.Panicf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	loadedConfig := config.GetConfig()

	env, err := config.EnvFromProcess()
	if err != nil {
		log.Panicf("Failed to read environment: %v", err)
	}

	botClient, err := bot.NewClient(env.BotToken)
	if err != nil {
		log.Panicf("Failed to initialize bot client: %v", err)
	}
	log.Printf("Authorized on account %s", botClient.Self.UserName)

	if err := botClient.PublishCommands([]tgbotapi.BotCommand{
		{Command: fsm.CommandStart, Description: "Запустить и заполнить анкету"},
		{Command: fsm.CommandAsk, Description: "Задать вопрос"},
		{Command: fsm.CommandCancel, Description: "В главное меню"},
	}); err != nil {
		log.Printf("Warning: failed to publish command menu: %v", err)
	}

	botPort, err := telegramadapter.New(botClient, log.Default())
	if err != nil {
		log.Panicf("Failed to create telegram adapter: %v", err)
	}

	directory, registrations, experts, messageLog, err := buildStorage(env)
	if err != nil {
		log.Panicf("Failed to initialize storage: %v", err)
	}

	model, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  env.LLMAPIKey,
		BaseURL: env.LLMBaseURL,
		Model:   env.LLMModel,
	})
	if err != nil {
		log.Panicf("Failed to initialize model client: %v", err)
	}

	deps := &fsm.Deps{
		Bot:           botPort,
		Config:        loadedConfig,
		Directory:     directory,
		Registrations: registrations,
		Experts:       experts,
		Log:           messageLog,
		Model:         model,
	}

	scheduler, err := broadcast.NewScheduler(botPort, directory, loadedConfig.Broadcast)
	if err != nil {
		log.Panicf("Failed to build broadcast scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Panicf("Failed to start broadcast scheduler: %v", err)
	}
	defer scheduler.Stop()

	fsmCreator := fsm.NewFSMCreator(loadedConfig)
	stateStore := state.NewStore(fsmCreator)
	updates := botClient.GetUpdatesChan(60)
	log.Println("Starting update processing...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Shutdown signal received...")
		cancel()
	}()

	for {
		select {
		case update := <-updates:
			if update.UpdateID == 0 {
				continue
			}
			go fsm.HandleUpdate(ctx, update, deps, stateStore)
		case <-ctx.Done():
			log.Println("Stopping update processing loop...")
			return
		}
	}
}

// buildStorage picks the persistence engine: SQLite when SQLITE_DSN is
// set, flat files under DATA_DIR otherwise.
func buildStorage(env config.Env) (storage.ChatDirectory, storage.RegistrationRepo, storage.ExpertRoster, storage.MessageLog, error) {
	if env.SQLiteDSN != "" {
		store, err := sqlitestore.New(env.SQLiteDSN)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		log.Printf("Using sqlite storage at %s", env.SQLiteDSN)
		return store.Directory(), store.Registrations(), store.Experts(), store.MessageLog(), nil
	}

	log.Printf("Using flat-file storage under %s", env.DataDir)
	return filestore.NewDirectory(filepath.Join(env.DataDir, "users.json")),
		filestore.NewRegistrations(filepath.Join(env.DataDir, "users.csv")),
		filestore.NewExperts(filepath.Join(env.DataDir, "experts.csv")),
		filestore.NewMessageLog(filepath.Join(env.DataDir, "logs.csv")),
		nil
}
