package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// Recognizer extracts raw text from a still image. Implementations are
// long-lived singletons reused across calls; Terminate releases them
// at app shutdown. Recognition is the one seconds-scale operation in
// this pipeline, so it takes a cancellable context.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Terminate()
}

const recognizePrompt = "Transcris tout le texte visible sur cette ordonnance, ligne par ligne, sans aucun commentaire ni mise en forme."

// VisionRecognizer recognizes prescription text through a vision chat
// model. The client is initialized once and reused.
type VisionRecognizer struct {
	apiKey  string
	baseURL string
	model   string

	mu     sync.Mutex
	client *openai.Client
}

func NewVisionRecognizer(apiKey, baseURL, model string) *VisionRecognizer {
	return &VisionRecognizer{apiKey: apiKey, baseURL: baseURL, model: model}
}

func (r *VisionRecognizer) ensureClient() *openai.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		config := openai.DefaultConfig(r.apiKey)
		if r.baseURL != "" {
			config.BaseURL = r.baseURL
		}
		r.client = openai.NewClientWithConfig(config)
		log.Printf("OCR recognizer initialized (model: %s)", r.model)
	}
	return r.client
}

// Recognize sends the image and returns the transcribed text. Unlike
// catalog fallbacks, recognition failures are returned to the caller:
// the user asked for this result and must see the error.
func (r *VisionRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	client := r.ensureClient()
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: recognizePrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("recognition returned no output")
	}
	return resp.Choices[0].Message.Content, nil
}

// Terminate drops the client; the next Recognize re-initializes.
func (r *VisionRecognizer) Terminate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.client = nil
}
