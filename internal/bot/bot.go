// Package bot is the Telegram surface: listing and editing
// medications, marking doses taken, adherence reports, and the
// barcode/prescription scan flows.
package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/bot/handlers"
	"github.com/easypills/easypills/internal/catalog"
	"github.com/easypills/easypills/internal/history"
	"github.com/easypills/easypills/internal/ocr"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/scheduler"
	"github.com/easypills/easypills/internal/tracker"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
	chatID   int64
}

type Deps struct {
	Tracker     *tracker.Service
	History     *history.Service
	Medications *repository.MedicationRepository
	Settings    *repository.SettingsRepository
	Catalog     *catalog.Service
	OCR         *ocr.Service // nil when not configured
	Scheduler   *scheduler.Scheduler
}

// New builds the bot over an existing API client (shared with the
// scheduler). chatID is the single chat the bot serves; other chats
// are ignored.
func New(api *tgbotapi.BotAPI, chatID int64, deps Deps) *Bot {
	return &Bot{
		api:      api,
		handlers: handlers.New(api, deps.Tracker, deps.History, deps.Medications, deps.Settings, deps.Catalog, deps.OCR, deps.Scheduler),
		chatID:   chatID,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if b.chatID != 0 && update.CallbackQuery.Message != nil &&
			update.CallbackQuery.Message.Chat.ID != b.chatID {
			return
		}
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	if b.chatID != 0 && update.Message.Chat.ID != b.chatID {
		return
	}

	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}
	b.handlers.HandleMessage(ctx, update.Message)
}
