package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	days := 7
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 365 {
			h.sendMessage(msg.Chat.ID, "Usage : /stats [7|30|90]")
			return
		}
		days = n
	}

	st := h.history.Stats(ctx, days)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Observance sur %d jours\n\n", days)
	fmt.Fprintf(&b, "Globale : %d%%\n", st.Overall)
	fmt.Fprintf(&b, "Jours parfaits : %d\n", st.PerfectDays)
	fmt.Fprintf(&b, "Série en cours : %d jour(s)\n", st.CurrentStreak)
	if st.Best.Date != "-" {
		fmt.Fprintf(&b, "Meilleur jour : %s (%d%%)\n", st.Best.Date, st.Best.Percentage)
	}
	if st.Worst.Date != "-" {
		fmt.Fprintf(&b, "Pire jour : %s (%d%%)\n", st.Worst.Date, st.Worst.Percentage)
	}
	fmt.Fprintf(&b, "\nTendance : %s", trendArrow(st.FirstHalfAvg, st.SecondHalfAvg))
	h.sendMessage(msg.Chat.ID, b.String())
}

// trendArrow compares the recent half of the window (days are newest
// first, so FirstHalfAvg is the recent one) against the older half.
func trendArrow(recent, older float64) string {
	switch {
	case recent > older+5:
		return "📈 en progrès"
	case recent < older-5:
		return "📉 en baisse"
	default:
		return "➡️ stable"
	}
}
