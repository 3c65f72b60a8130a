package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/easypills/easypills/internal/catalog"
)

// maxPhotoBytes bounds prescription photo downloads.
const maxPhotoBytes = 10 << 20

var photoClient = &http.Client{Timeout: 30 * time.Second}

func (h *Handlers) handleScan(ctx context.Context, msg *tgbotapi.Message) {
	code := strings.TrimSpace(msg.CommandArguments())
	if !catalog.IsValidCIP13(code) {
		h.sendMessage(msg.Chat.ID, "Usage : /scan code (13 chiffres, ex : 3400936195592)")
		return
	}
	h.resolveBarcode(ctx, msg.Chat.ID, code)
}

func (h *Handlers) resolveBarcode(ctx context.Context, chatID int64, code string) {
	match := h.catalog.ResolveByBarcode(ctx, code)
	if match == nil {
		h.sendMessage(chatID, "Médicament introuvable pour ce code-barres.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💊 %s\n", match.Name)
	if match.Dosage != "" {
		fmt.Fprintf(&b, "Dosage : %s\n", match.Dosage)
	}
	fmt.Fprintf(&b, "Confiance : %.0f%%\n\n", match.Confidence*100)
	fmt.Fprintf(&b, "Pour l'ajouter :\n/add %s | %s | 08:00 | quotidien", match.Name, match.Dosage)
	h.sendMessage(chatID, b.String())
}

// handlePrescriptionPhoto downloads the largest photo size Telegram
// offers and runs recognition plus extraction on it.
func (h *Handlers) handlePrescriptionPhoto(ctx context.Context, msg *tgbotapi.Message) {
	if h.ocr == nil {
		h.sendMessage(msg.Chat.ID, "La reconnaissance d'ordonnance n'est pas configurée.")
		return
	}

	photo := msg.Photo[len(msg.Photo)-1]
	url, err := h.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Échec du téléchargement de la photo, réessayez.")
		return
	}
	image, err := downloadPhoto(ctx, url)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Échec du téléchargement de la photo, réessayez.")
		return
	}

	h.sendMessage(msg.Chat.ID, "🔍 Analyse de l'ordonnance en cours...")

	matches, err := h.ocr.ExtractFromImage(ctx, image)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "La reconnaissance a échoué, réessayez avec une photo plus nette.")
		return
	}
	if len(matches) == 0 {
		h.sendMessage(msg.Chat.ID, "Aucun médicament reconnu sur cette photo.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Médicaments reconnus (%d) :\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s", i+1, m.Name)
		if m.Dosage != "" {
			fmt.Fprintf(&b, " — %s", m.Dosage)
		}
		if m.Frequency != "" {
			fmt.Fprintf(&b, ", %s", m.Frequency)
		}
		fmt.Fprintf(&b, " (%.0f%%)", m.Confidence*100)
		if !m.InCatalog {
			b.WriteString(" ⚠️ hors catalogue")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nAjoutez-les avec /add nom | dosage | heures | jours")
	h.sendMessage(msg.Chat.ID, b.String())
}

func downloadPhoto(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := photoClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}
