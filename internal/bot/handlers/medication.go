package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/schedule"
)

var frenchWeekdays = map[int]string{
	1: "lun", 2: "mar", 3: "mer", 4: "jeu", 5: "ven", 6: "sam", 7: "dim",
}

func (h *Handlers) handleMedicationList(ctx context.Context, msg *tgbotapi.Message) {
	meds := h.meds.List(ctx)
	if len(meds) == 0 {
		h.sendMessage(msg.Chat.ID, "Aucun médicament enregistré. Utilisez /add pour commencer.")
		return
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString("💊 Mes médicaments\n\n")
	for i, m := range meds {
		fmt.Fprintf(&b, "%d. %s", i+1, m.Name)
		if m.Dosage != "" {
			fmt.Fprintf(&b, " (%s)", m.Dosage)
		}
		if m.Paused {
			b.WriteString(" ⏸ en pause")
		}
		fmt.Fprintf(&b, "\n    %s à %s\n", describeRule(&m), strings.Join(m.Times, ", "))
		if next, err := schedule.NextDose(&m, now); err == nil && next != nil {
			fmt.Fprintf(&b, "    Prochaine prise : %s\n", next.Format("02/01 15:04"))
		}
	}
	h.sendMessage(msg.Chat.ID, b.String())
}

func describeRule(m *models.Medication) string {
	if m.IsMonthly() {
		parts := make([]string, len(m.MonthlyDays))
		for i, d := range m.MonthlyDays {
			parts[i] = strconv.Itoa(d)
		}
		return "le " + strings.Join(parts, ", ") + " du mois"
	}
	if m.Daily {
		return "tous les jours"
	}
	var parts []string
	for _, d := range m.Days {
		if name, ok := frenchWeekdays[d]; ok {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "jamais"
	}
	return strings.Join(parts, ", ")
}

// handleAddMedication parses "/add nom | dosage | heures | jours".
func (h *Handlers) handleAddMedication(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /add nom | dosage | heures | jours\nex : /add Doliprane | 1000 mg | 08:00,20:00 | quotidien")
		return
	}

	fields := strings.Split(args, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 || fields[0] == "" {
		h.sendMessage(msg.Chat.ID, "Il manque des champs. ex : /add Doliprane | 1000 mg | 08:00,20:00 | quotidien")
		return
	}

	times, err := parseTimes(fields[2])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Heures invalides : "+err.Error())
		return
	}

	med := models.Medication{
		ID:       uuid.NewString(),
		Name:     fields[0],
		Dosage:   fields[1],
		Times:    times,
		StartISO: schedule.ISODate(time.Now()),
	}

	rule := "quotidien"
	if len(fields) >= 4 && fields[3] != "" {
		rule = fields[3]
	}
	if err := parseRule(rule, &med); err != nil {
		h.sendMessage(msg.Chat.ID, "Jours invalides : "+err.Error())
		return
	}

	if err := h.meds.Add(ctx, med); err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de l'enregistrement, réessayez.")
		return
	}
	h.sched.Notify()
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ %s ajouté (%s à %s)",
		med.Name, describeRule(&med), strings.Join(med.Times, ", ")))
}

func parseTimes(s string) ([]string, error) {
	var times []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("15:04", part)
		if err != nil {
			return nil, fmt.Errorf("%q n'est pas au format HH:MM", part)
		}
		times = append(times, t.Format("15:04"))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("aucune heure fournie")
	}
	return times, nil
}

// parseRule fills the recurrence: "quotidien", weekday numbers
// "1,3,5" (lun=1..dim=7), or month days "j1,j15".
func parseRule(s string, med *models.Medication) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "quotidien" || s == "daily" || s == "tous les jours" {
		med.Daily = true
		return nil
	}
	monthly := strings.HasPrefix(s, "j")
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.TrimPrefix(part, "j"))
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("%q n'est pas un nombre", part)
		}
		if monthly {
			if n < 1 || n > 31 {
				return fmt.Errorf("jour du mois %d hors limites", n)
			}
			med.MonthlyDays = append(med.MonthlyDays, n)
		} else {
			if n < 1 || n > 7 {
				return fmt.Errorf("jour de semaine %d hors limites (lun=1..dim=7)", n)
			}
			med.Days = append(med.Days, n)
		}
	}
	return nil
}

func (h *Handlers) handlePause(ctx context.Context, msg *tgbotapi.Message, paused bool) {
	med, ok := h.medByIndex(ctx, msg)
	if !ok {
		return
	}
	if err := h.meds.SetPaused(ctx, med.ID, paused); err != nil {
		h.sendMessage(msg.Chat.ID, "Médicament introuvable.")
		return
	}
	h.sched.Notify()
	if paused {
		h.sendMessage(msg.Chat.ID, "⏸ "+med.Name+" mis en pause.")
	} else {
		h.sendMessage(msg.Chat.ID, "▶️ "+med.Name+" repris.")
	}
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	med, ok := h.medByIndex(ctx, msg)
	if !ok {
		return
	}
	if err := h.tracker.DeleteMedication(ctx, med.ID); err != nil {
		h.sendMessage(msg.Chat.ID, "Échec de la suppression, réessayez.")
		return
	}
	h.sched.Notify()
	h.sendMessage(msg.Chat.ID, "🗑 "+med.Name+" supprimé, historique nettoyé.")
}

func (h *Handlers) medByIndex(ctx context.Context, msg *tgbotapi.Message) (models.Medication, bool) {
	arg := strings.TrimSpace(msg.CommandArguments())
	n, err := strconv.Atoi(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Indiquez le numéro du médicament (voir /meds).")
		return models.Medication{}, false
	}
	meds := h.meds.List(ctx)
	if n < 1 || n > len(meds) {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Numéro hors limites (1..%d).", len(meds)))
		return models.Medication{}, false
	}
	return meds[n-1], true
}
