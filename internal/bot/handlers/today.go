package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/models"
)

func (h *Handlers) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	if err := h.tracker.EnsureToday(ctx); err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de la lecture du plan du jour, réessayez.")
		return
	}
	takes := h.tracker.Today(ctx)
	if len(takes) == 0 {
		h.sendMessage(msg.Chat.ID, "Rien à prendre aujourd'hui. 🎉")
		return
	}

	taken := 0
	var b strings.Builder
	b.WriteString("📋 Aujourd'hui\n\n")
	for i, t := range takes {
		mark := "⬜"
		if t.Taken {
			mark = "✅"
			taken++
		}
		fmt.Fprintf(&b, "%d. %s %s  %s", i+1, mark, t.ScheduledTime, t.MedicationName)
		if t.Dosage != "" {
			fmt.Fprintf(&b, " (%s)", t.Dosage)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d/%d prises", taken, len(takes))
	h.sendMessage(msg.Chat.ID, b.String())
}

func (h *Handlers) handleTake(ctx context.Context, msg *tgbotapi.Message, taken bool) {
	take, ok := h.takeByIndex(ctx, msg)
	if !ok {
		return
	}
	if err := h.tracker.SetTaken(ctx, take.ID, taken); err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de l'enregistrement, réessayez.")
		return
	}
	if taken {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ %s (%s) pris.", take.MedicationName, take.ScheduledTime))
	} else {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("↩️ %s (%s) annulé.", take.MedicationName, take.ScheduledTime))
	}
}

func (h *Handlers) takeByIndex(ctx context.Context, msg *tgbotapi.Message) (models.Take, bool) {
	arg := strings.TrimSpace(msg.CommandArguments())
	n, err := strconv.Atoi(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Indiquez le numéro de la prise (voir /today).")
		return models.Take{}, false
	}
	takes := h.tracker.Today(ctx)
	if n < 1 || n > len(takes) {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Numéro hors limites (1..%d).", len(takes)))
		return models.Take{}, false
	}
	return takes[n-1], true
}

func (h *Handlers) handleTakeAck(ctx context.Context, callback *tgbotapi.CallbackQuery, takeID string) {
	if err := h.tracker.SetTaken(ctx, takeID, true); err != nil {
		h.editMessage(callback, "❌ Échec de l'enregistrement, réessayez.")
		return
	}
	h.editMessage(callback, "✅ Prise confirmée.")
}

func (h *Handlers) handleNotifications(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg != "on" && arg != "off" {
		h.sendMessage(msg.Chat.ID, "Usage : /notifications on|off")
		return
	}
	enabled := arg == "on"
	err := h.settings.Update(ctx, func(s *models.Settings) {
		s.NotificationsEnabled = enabled
	})
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de l'enregistrement, réessayez.")
		return
	}
	h.sched.Notify()
	if enabled {
		h.sendMessage(msg.Chat.ID, "🔔 Rappels activés.")
	} else {
		h.sendMessage(msg.Chat.ID, "🔕 Rappels désactivés.")
	}
}

func (h *Handlers) handleReset(msg *tgbotapi.Message) {
	confirm := tgbotapi.NewMessage(msg.Chat.ID,
		"⚠️ Tout effacer ? Médicaments, prises du jour et historique seront perdus.")
	confirm.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Effacer", "reset_confirm:"),
			tgbotapi.NewInlineKeyboardButtonData("Annuler", "reset_cancel:"),
		),
	)
	if _, err := h.api.Send(confirm); err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de l'envoi, réessayez.")
	}
}

func (h *Handlers) handleResetConfirm(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if err := h.tracker.ResetAll(ctx); err != nil {
		h.editMessage(callback, "❌ Échec de la réinitialisation, réessayez.")
		return
	}
	h.sched.Notify()
	h.editMessage(callback, "🗑 Toutes les données ont été effacées.")
}
