package handlers

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/catalog"
	"github.com/easypills/easypills/internal/history"
	"github.com/easypills/easypills/internal/ocr"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/scheduler"
	"github.com/easypills/easypills/internal/tracker"
)

type Handlers struct {
	api      *tgbotapi.BotAPI
	tracker  *tracker.Service
	history  *history.Service
	meds     *repository.MedicationRepository
	settings *repository.SettingsRepository
	catalog  *catalog.Service
	ocr      *ocr.Service
	sched    *scheduler.Scheduler
}

func New(
	api *tgbotapi.BotAPI,
	trk *tracker.Service,
	hist *history.Service,
	meds *repository.MedicationRepository,
	settings *repository.SettingsRepository,
	cat *catalog.Service,
	ocrSvc *ocr.Service,
	sched *scheduler.Scheduler,
) *Handlers {
	return &Handlers{
		api:      api,
		tracker:  trk,
		history:  hist,
		meds:     meds,
		settings: settings,
		catalog:  cat,
		ocr:      ocrSvc,
		sched:    sched,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		h.handleHelp(msg)
	case "meds":
		h.handleMedicationList(ctx, msg)
	case "add":
		h.handleAddMedication(ctx, msg)
	case "today":
		h.handleToday(ctx, msg)
	case "take":
		h.handleTake(ctx, msg, true)
	case "untake":
		h.handleTake(ctx, msg, false)
	case "pause":
		h.handlePause(ctx, msg, true)
	case "resume":
		h.handlePause(ctx, msg, false)
	case "del":
		h.handleDelete(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	case "scan":
		h.handleScan(ctx, msg)
	case "notifications":
		h.handleNotifications(ctx, msg)
	case "reset":
		h.handleReset(msg)
	default:
		h.sendMessage(msg.Chat.ID, "Commande inconnue. /help pour la liste des commandes.")
	}
}

// HandleMessage treats a bare 13-digit message as a scanned barcode
// and a photo as a prescription to recognize.
func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if len(msg.Photo) > 0 {
		h.handlePrescriptionPhoto(ctx, msg)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if catalog.IsValidCIP13(text) {
		h.resolveBarcode(ctx, msg.Chat.ID, text)
		return
	}
	h.sendMessage(msg.Chat.ID, "Envoyez un code-barres (13 chiffres), une photo d'ordonnance, ou /help.")
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	action, arg, _ := strings.Cut(callback.Data, ":")
	switch action {
	case "take_ack":
		h.handleTakeAck(ctx, callback, arg)
	case "reset_confirm":
		h.handleResetConfirm(ctx, callback)
	case "reset_cancel":
		h.editMessage(callback, "Réinitialisation annulée.")
	}
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID, `💊 EasyPills

/meds — mes médicaments
/add nom | dosage | heures | jours — ajouter
    ex: /add Doliprane | 1000 mg | 08:00,20:00 | quotidien
    jours: quotidien, 1,3,5 (lun=1..dim=7) ou j1,j15 (mensuel)
/today — prises du jour
/take n — marquer la prise n comme prise
/untake n — annuler
/pause n · /resume n — suspendre / reprendre
/del n — supprimer (efface aussi l'historique)
/stats [7|30|90] — observance
/scan code — recherche par code-barres CIP13
/notifications on|off — rappels
/reset — tout effacer

Envoyez une photo d'ordonnance pour la reconnaissance de texte.`)
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) editMessage(callback *tgbotapi.CallbackQuery, text string) {
	if callback.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID, text)
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
