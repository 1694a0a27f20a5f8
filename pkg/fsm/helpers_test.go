package fsm

import (
	"cosmoexpertbot/pkg/bot/fakeadapter"
	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/fsm/questions"
	"cosmoexpertbot/pkg/llm/fakellm"
	"cosmoexpertbot/pkg/state"
	"cosmoexpertbot/pkg/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// In-memory repositories for exercising the conversation core without
// touching disk.

type memDirectory struct {
	ids []int64
	err error
}

func (d *memDirectory) Add(chatID int64) error {
	if d.err != nil {
		return d.err
	}
	for _, id := range d.ids {
		if id == chatID {
			return nil
		}
	}
	d.ids = append(d.ids, chatID)
	return nil
}

func (d *memDirectory) All() ([]int64, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.ids, nil
}

type memRegistrations struct {
	recs []storage.Registration
	err  error
}

func (r *memRegistrations) Append(rec storage.Registration) error {
	if r.err != nil {
		return r.err
	}
	r.recs = append(r.recs, rec)
	return nil
}

func (r *memRegistrations) FindByHandle(handle string) (storage.Registration, error) {
	if r.err != nil {
		return storage.Registration{}, r.err
	}
	want := storage.NormalizeHandle(handle)
	for _, rec := range r.recs {
		if storage.NormalizeHandle(rec.Handle) == want {
			return rec, nil
		}
	}
	return storage.Registration{}, storage.ErrNotFound
}

type memExperts struct {
	experts []storage.Expert
	err     error
}

func (e *memExperts) FindByField(field string) (storage.Expert, error) {
	if e.err != nil {
		return storage.Expert{}, e.err
	}
	for _, expert := range e.experts {
		if expert.Covers(field) {
			return expert, nil
		}
	}
	return storage.Expert{}, storage.ErrNotFound
}

type memLog struct {
	entries []storage.LogEntry
	err     error
}

func (l *memLog) Append(entry storage.LogEntry) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, entry)
	return nil
}

type testEnv struct {
	deps    *Deps
	store   *state.Store
	adapter *fakeadapter.FakeAdapter
	dir     *memDirectory
	regs    *memRegistrations
	experts *memExperts
	log     *memLog
	model   *fakellm.Fake
}

func newTestEnv() *testEnv {
	questions.RegisterBuiltins()
	cfg := config.Default()

	env := &testEnv{
		adapter: &fakeadapter.FakeAdapter{},
		dir:     &memDirectory{},
		regs:    &memRegistrations{},
		experts: &memExperts{},
		log:     &memLog{},
		model:   &fakellm.Fake{},
	}
	env.deps = &Deps{
		Bot:           env.adapter,
		Config:        cfg,
		Directory:     env.dir,
		Registrations: env.regs,
		Experts:       env.experts,
		Log:           env.log,
		Model:         env.model,
	}
	env.store = state.NewStore(NewFSMCreator(cfg))
	return env
}

func testUser(id int64, handle string) *tgbotapi.User {
	return &tgbotapi.User{ID: id, UserName: handle}
}

func textUpdate(user *tgbotapi.User, chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      user,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		cmdLen := len(text)
		for i, r := range text {
			if r == ' ' {
				cmdLen = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: cmdLen},
		}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(user *tgbotapi.User, chatID int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: user,
			Message: &tgbotapi.Message{
				MessageID: messageID,
				Chat:      &tgbotapi.Chat{ID: chatID},
			},
			Data: data,
		},
	}
}
