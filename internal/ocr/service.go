package ocr

import (
	"context"

	"github.com/easypills/easypills/internal/catalog"
)

// Service chains recognition and extraction.
type Service struct {
	rec Recognizer
	ex  *Extractor
}

func NewService(rec Recognizer, ex *Extractor) *Service {
	return &Service{rec: rec, ex: ex}
}

// ExtractFromImage recognizes the image then extracts candidates.
// Recognition errors propagate; an image with readable text but no
// medication simply yields an empty list.
func (s *Service) ExtractFromImage(ctx context.Context, image []byte) ([]catalog.Match, error) {
	text, err := s.rec.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}
	return s.ex.ExtractCandidates(text), nil
}

func (s *Service) Terminate() {
	s.rec.Terminate()
}
