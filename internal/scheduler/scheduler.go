// Package scheduler delivers dose reminders. A ticker loop re-reads
// the stored state every interval, so medication edits, pauses and
// deletes take effect on the next tick without explicit cancellation
// bookkeeping.
package scheduler

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/schedule"
	"github.com/easypills/easypills/internal/tracker"
)

type sentReminder struct {
	messageID int
	at        time.Time
}

type Scheduler struct {
	api           *tgbotapi.BotAPI
	tracker       *tracker.Service
	settings      *repository.SettingsRepository
	chatID        int64
	checkInterval time.Duration
	notifyCh      chan struct{}
	now           func() time.Time

	sentDate string
	sent     map[string]sentReminder
}

func New(api *tgbotapi.BotAPI, trk *tracker.Service, settings *repository.SettingsRepository, chatID int64) *Scheduler {
	return &Scheduler{
		api:           api,
		tracker:       trk,
		settings:      settings,
		chatID:        chatID,
		checkInterval: 1 * time.Minute,
		notifyCh:      make(chan struct{}, 1),
		now:           time.Now,
		sent:          make(map[string]sentReminder),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	settings := s.settings.Get(ctx)
	if !settings.NotificationsEnabled {
		return
	}

	if err := s.tracker.EnsureToday(ctx); err != nil {
		log.Printf("Failed to generate today schedule: %v", err)
		return
	}

	now := s.now()
	todayISO := schedule.ISODate(now)
	if s.sentDate != todayISO {
		s.sent = make(map[string]sentReminder)
		s.sentDate = todayISO
	}

	snooze := time.Duration(settings.SnoozeDuration) * time.Minute
	if snooze <= 0 {
		snooze = 10 * time.Minute
	}

	nowHM := now.Format("15:04")
	for _, take := range s.tracker.Today(ctx) {
		if take.Taken {
			delete(s.sent, take.ID)
			continue
		}
		if take.ScheduledTime > nowHM {
			continue
		}
		prev, sentBefore := s.sent[take.ID]
		if sentBefore && now.Sub(prev.at) < snooze {
			continue
		}
		s.remind(take, settings, prev, sentBefore)
	}
}

func (s *Scheduler) remind(take models.Take, settings models.Settings, prev sentReminder, resend bool) {
	// Delete the previous reminder for this dose to avoid flooding.
	if resend && prev.messageID != 0 {
		deleteMsg := tgbotapi.NewDeleteMessage(s.chatID, prev.messageID)
		if _, err := s.api.Request(deleteMsg); err != nil {
			log.Printf("Failed to delete old reminder message %d: %v", prev.messageID, err)
		}
	}

	text := "💊 Rappel : " + take.MedicationName
	if settings.DiscreteMode {
		text = "💊 Rappel de prise"
	} else if take.Dosage != "" {
		text += " (" + take.Dosage + ")"
	}
	text += "\n⏰ Prévu à " + take.ScheduledTime

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Pris", "take_ack:"+take.ID),
		),
	)

	sentMsg, err := s.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send reminder for %s: %v", take.ID, err)
		return
	}

	s.sent[take.ID] = sentReminder{messageID: sentMsg.MessageID, at: s.now()}
	log.Printf("Sent reminder %s (msg_id=%d)", take.ID, sentMsg.MessageID)
}
