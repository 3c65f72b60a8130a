// Package catalog resolves scanned barcodes and recognized names
// against the static medication reference catalog (a read-only JSON
// artifact produced by an offline build).
package catalog

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
)

// Entry is one reference medication.
type Entry struct {
	Name        string   `json:"name"` // canonical: uppercase, diacritics stripped
	Dosage      string   `json:"dosage,omitempty"`
	Form        string   `json:"form,omitempty"`
	Laboratoire string   `json:"laboratoire,omitempty"`
	Cip13       string   `json:"cip13,omitempty"`
	Cip13List   []string `json:"cip13_list,omitempty"`
}

// Catalog is the loaded artifact: the item list plus its two indices.
type Catalog struct {
	Items        []Entry          `json:"items"`
	IndexByName  map[string][]int `json:"indexByName"`
	IndexByCip13 map[string]int   `json:"indexByCip13"`
}

// Match is a resolution result handed to the medication-creation flow.
type Match struct {
	Name         string  `json:"name"`
	Dosage       string  `json:"dosage,omitempty"`
	Frequency    string  `json:"frequency,omitempty"`
	Cip13        string  `json:"cip13,omitempty"`
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"source"` // "barcode" or "ocr"
	InCatalog    bool    `json:"inCatalog"`
	MatchedLabel string  `json:"matchedLabel,omitempty"`
}

// Fallback answers barcode lookups the local catalog cannot.
type Fallback interface {
	Lookup(ctx context.Context, cip13 string) (*Match, error)
}

// Service is the injectable catalog matcher. The artifact is loaded
// lazily exactly once; concurrent first callers share the same load.
type Service struct {
	path     string
	fallback Fallback
	once     sync.Once
	cat      *Catalog
}

// New returns a service that loads the artifact from path on first use.
func New(path string, fallback Fallback) *Service {
	return &Service{path: path, fallback: fallback}
}

// NewFromCatalog wires a pre-built catalog, typically a test fixture.
func NewFromCatalog(cat *Catalog, fallback Fallback) *Service {
	return &Service{cat: cat, fallback: fallback}
}

func (s *Service) load() *Catalog {
	s.once.Do(func() {
		if s.cat != nil {
			s.normalize()
			return
		}
		s.cat = &Catalog{}
		raw, err := os.ReadFile(s.path)
		if err != nil {
			log.Printf("Failed to load catalog %s: %v", s.path, err)
			s.normalize()
			return
		}
		var cat Catalog
		if err := json.Unmarshal(raw, &cat); err != nil {
			log.Printf("Corrupt catalog %s: %v", s.path, err)
			s.normalize()
			return
		}
		s.cat = &cat
		s.normalize()
		log.Printf("Catalog loaded: %d medications, %d CIP13 codes",
			len(cat.Items), len(cat.IndexByCip13))
	})
	return s.cat
}

func (s *Service) normalize() {
	if s.cat.IndexByName == nil {
		s.cat.IndexByName = map[string][]int{}
	}
	if s.cat.IndexByCip13 == nil {
		s.cat.IndexByCip13 = map[string]int{}
	}
}

// Loaded reports whether a non-empty catalog is available.
func (s *Service) Loaded() bool {
	return len(s.load().Items) > 0
}

// Stats returns the item and CIP13 index sizes.
func (s *Service) Stats() (items, cip13 int) {
	cat := s.load()
	return len(cat.Items), len(cat.IndexByCip13)
}

// Names returns the canonical medication names in item order, deduped.
// This feeds the OCR extractor's name index.
func (s *Service) Names() []string {
	cat := s.load()
	seen := make(map[string]bool, len(cat.Items))
	names := make([]string, 0, len(cat.Items))
	for _, item := range cat.Items {
		name := Canonical(item.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ResolveByBarcode resolves a scanned CIP13 code. A malformed code
// returns nil without any lookup: scanner noise is not an error. A
// local index hit is authoritative (confidence 0.98). On a miss the
// fallback is consulted once; any fallback failure is absorbed to nil
// so the scan flow degrades to "not found" instead of crashing.
func (s *Service) ResolveByBarcode(ctx context.Context, code string) *Match {
	if !IsValidCIP13(code) {
		return nil
	}
	cat := s.load()
	if idx, ok := cat.IndexByCip13[code]; ok && idx >= 0 && idx < len(cat.Items) {
		item := cat.Items[idx]
		return &Match{
			Name:       item.Name,
			Dosage:     item.Dosage,
			Cip13:      code,
			Confidence: 0.98,
			Source:     "barcode",
			InCatalog:  true,
		}
	}
	if s.fallback == nil {
		return nil
	}
	match, err := s.fallback.Lookup(ctx, code)
	if err != nil {
		log.Printf("Fallback lookup failed for %s: %v", code, err)
		return nil
	}
	return match
}

// SearchByName is a case-insensitive substring search over item names,
// for autocomplete. Queries under two characters return nothing.
func (s *Service) SearchByName(query string, limit int) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}
	var results []Entry
	for _, item := range s.load().Items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			results = append(results, item)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// IsValidCIP13 reports whether code is exactly 13 ASCII digits.
func IsValidCIP13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
