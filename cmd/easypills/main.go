package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/bot"
	"github.com/easypills/easypills/internal/catalog"
	"github.com/easypills/easypills/internal/catalog/bdpm"
	"github.com/easypills/easypills/internal/config"
	"github.com/easypills/easypills/internal/database"
	"github.com/easypills/easypills/internal/history"
	"github.com/easypills/easypills/internal/ocr"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/scheduler"
	"github.com/easypills/easypills/internal/storage"
	"github.com/easypills/easypills/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick the record store: Postgres when a URI is set, otherwise an
	// embedded Badger database, otherwise in-memory (data lost on exit).
	var store storage.Store
	switch {
	case cfg.DatabaseURI != "":
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Using Postgres record store")
		store = storage.NewPostgres(db)
	case cfg.BadgerPath != "":
		bs, err := storage.OpenBadger(cfg.BadgerPath)
		if err != nil {
			log.Fatalf("Failed to open badger store: %v", err)
		}
		log.Printf("Using Badger record store at %s", cfg.BadgerPath)
		store = bs
	default:
		log.Println("No store configured, using in-memory records (data lost on exit)")
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	// Repositories and domain services
	meds := repository.NewMedicationRepository(store)
	today := repository.NewTodayRepository(store)
	ledger := repository.NewHistoryRepository(store)
	settings := repository.NewSettingsRepository(store)

	trk := tracker.New(store, meds, today, ledger)
	hist := history.New(meds, ledger)

	if err := hist.Prune(ctx, cfg.HistoryRetain); err != nil {
		log.Printf("Failed to prune history: %v", err)
	}

	// Catalog with the online lookup fallback
	cat := catalog.New(cfg.CatalogPath, bdpm.NewClient(cfg.BDPMBaseURL))

	// OCR is optional
	var ocrSvc *ocr.Service
	if cfg.OCRAPIKey != "" {
		rec := ocr.NewVisionRecognizer(cfg.OCRAPIKey, cfg.OCRBaseURL, cfg.OCRModel)
		ocrSvc = ocr.NewService(rec, ocr.NewExtractor(cat.Names(), ocr.DefaultConfig()))
		defer ocrSvc.Terminate()
		log.Printf("OCR configured (model: %s)", cfg.OCRModel)
	} else {
		log.Println("OCR not configured, prescription photos disabled")
	}

	// One Telegram API client, shared by the scheduler and the bot
	tgAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	sched := scheduler.New(tgAPI, trk, settings, cfg.TelegramChatID)
	go sched.Start(ctx)

	b := bot.New(tgAPI, cfg.TelegramChatID, bot.Deps{
		Tracker:     trk,
		History:     hist,
		Medications: meds,
		Settings:    settings,
		Catalog:     cat,
		OCR:         ocrSvc,
		Scheduler:   sched,
	})

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
