// Package broadcast delivers the daily digest message to every chat
// that ever talked to the bot.
package broadcast

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"cosmoexpertbot/pkg/config"
	"cosmoexpertbot/pkg/ports/botport"
	"cosmoexpertbot/pkg/storage"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily broadcast job on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	bot       botport.BotPort
	directory storage.ChatDirectory
	cfg       config.BroadcastConfig
	pick      func(n int) int
}

// NewScheduler builds a stopped scheduler; call Start to arm it.
func NewScheduler(bot botport.BotPort, directory storage.ChatDirectory, cfg config.BroadcastConfig) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid broadcast timezone '%s': %w", cfg.Timezone, err)
	}

	// Standard 5-field cron parser (min, hour, dom, month, dow) with
	// panic recovery, evaluated in the configured timezone.
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &Scheduler{
		cron:      c,
		bot:       bot,
		directory: directory,
		cfg:       cfg,
		pick:      rand.Intn,
	}, nil
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	expr := fmt.Sprintf("%d %d * * *", s.cfg.Minute, s.cfg.Hour)
	if _, err := s.cron.AddFunc(expr, func() {
		s.Run(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling broadcast ('%s'): %w", expr, err)
	}
	s.cron.Start()
	log.Printf("[Scheduler] Daily broadcast armed at %02d:%02d %s", s.cfg.Hour, s.cfg.Minute, s.cfg.Timezone)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run performs one broadcast: pick a random message from the pool and
// deliver it to every known chat. A failed recipient never blocks the
// rest of the fan-out.
func (s *Scheduler) Run(ctx context.Context) {
	if len(s.cfg.Messages) == 0 {
		log.Printf("[Run] Broadcast pool is empty, nothing to send")
		return
	}

	chatIDs, err := s.directory.All()
	if err != nil {
		log.Printf("[Run] Error loading chat directory: %v", err)
		return
	}
	if len(chatIDs) == 0 {
		log.Printf("[Run] No known chats, skipping broadcast")
		return
	}

	text := s.cfg.Messages[s.pick(len(s.cfg.Messages))]

	sent := 0
	for _, chatID := range chatIDs {
		if _, err := s.bot.SendBold(ctx, chatID, text); err != nil {
			log.Printf("[Run] Error broadcasting to chat %d: %v", chatID, err)
			continue
		}
		sent++
	}
	log.Printf("[Run] Broadcast delivered to %d/%d chats", sent, len(chatIDs))
}
