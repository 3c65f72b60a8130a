// Package ocr turns recognized prescription text into medication
// candidates. Extraction is line-oriented and tuned for recall over
// precision: candidates are reviewed by the user before anything is
// created.
package ocr

import (
	"regexp"
	"strings"

	"github.com/easypills/easypills/internal/catalog"
)

// Config exposes the extraction thresholds instead of burying them.
type Config struct {
	BaseConfidence  float64 // name found in the catalog
	DosageBonus     float64 // a dosage was attached
	FrequencyBonus  float64 // a frequency was attached
	MaxConfidence   float64
	KeepUncataloged bool    // emit contextual candidates missing from the catalog
	FloorConfidence float64 // base for those uncataloged candidates
}

func DefaultConfig() Config {
	return Config{
		BaseConfidence:  0.7,
		DosageBonus:     0.2,
		FrequencyBonus:  0.1,
		MaxConfidence:   0.99,
		KeepUncataloged: true,
		FloorConfidence: 0.45,
	}
}

// Lines carrying clinic or address boilerplate never yield a
// medication name, even when they contain a pharma term.
var stopwords = []string{
	"DOCTEUR", "DR", "MEDECIN", "PATIENT", "PATIENTE",
	"PHARMACIE", "ORDONNANCE", "RPPS", "CABINET",
	"BOULEVARD", "BD", "AVENUE", "RUE", "PLACE",
	"TELEPHONE", "TEL", "FAX",
	"ASSURE", "RCS", "SECRETARIAT",
}

var pharmaKeywords = []string{
	"COMPRIME", "COMPRIMES", "GELULE", "GELULES",
	"CACHET", "CACHETS", "SIROP", "SIROPS",
	"SOLUTION", "SOLUTIONS",
	"CP", "CPS", "GEL", "GELS",
	"MG", "G", "ML", "MCG", "UI",
	"FOIS", "JOUR", "MATIN", "MIDI", "SOIR", "HEURE", "HEURES",
}

var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mg|g|ml|µg|mcg|ui|%|iu)\b`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:milli|micro)?(?:gramme|litre)s?\b`),
}

var frequencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:fois?|x)\s*(?:par|/)\s*jour`),
	regexp.MustCompile(`(?i)matin|midi|soir|nuit`),
	regexp.MustCompile(`(?i)(?:toutes?\s+les?\s+)?(\d+)\s*h(?:eure)?s?\b`),
	regexp.MustCompile(`(?i)(?:pendant|durant)\s+(\d+)\s*jours?`),
}

// Extractor matches prescription lines against the catalog name index.
type Extractor struct {
	names      []string // canonical, catalog order
	nameSet    map[string]bool
	stopSet    map[string]bool
	keywordSet map[string]bool
	cfg        Config
}

// NewExtractor indexes the canonical catalog names (see
// catalog.Service.Names).
func NewExtractor(names []string, cfg Config) *Extractor {
	e := &Extractor{
		names:      names,
		nameSet:    make(map[string]bool, len(names)),
		stopSet:    make(map[string]bool, len(stopwords)),
		keywordSet: make(map[string]bool, len(pharmaKeywords)),
		cfg:        cfg,
	}
	for _, n := range names {
		e.nameSet[n] = true
	}
	for _, s := range stopwords {
		e.stopSet[s] = true
	}
	for _, k := range pharmaKeywords {
		e.keywordSet[k] = true
	}
	return e
}

type candidate struct {
	name      string
	inCatalog bool
}

// ExtractCandidates runs the line-oriented pipeline over raw
// recognized text and returns deduplicated candidates tagged
// source "ocr".
func (e *Extractor) ExtractCandidates(raw string) []catalog.Match {
	normalized := strings.ToUpper(catalog.StripDiacritics(raw))
	var lines []string
	for _, l := range strings.Split(normalized, "\n") {
		l = strings.TrimSpace(strings.Trim(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}

	var found []candidate
	seen := map[string]bool{}
	add := func(name string, inCatalog bool) {
		if seen[name] {
			return
		}
		seen[name] = true
		found = append(found, candidate{name: name, inCatalog: inCatalog})
	}

	for _, rawLine := range lines {
		line := cleanLineStart(rawLine)
		canon := catalog.Canonical(line)
		if e.lineHasStopword(canon) {
			continue
		}

		// Full catalog name anywhere in the line short-circuits.
		if name := e.findCatalogName(canon); name != "" {
			add(name, true)
			continue
		}

		if !e.hasPharmaContext(canon, line) {
			continue
		}

		// Window match over the first few words.
		words := strings.Fields(canon)
		matched := false
		for j := 0; j < len(words) && j < 3; j++ {
			w := words[j]
			if len(w) < 4 || e.stopSet[w] {
				continue
			}
			if e.nameSet[w] {
				add(w, true)
				matched = true
				break
			}
			if j+1 < len(words) {
				two := w + " " + words[j+1]
				if e.nameSet[two] {
					add(two, true)
					matched = true
					break
				}
			}
		}

		// Contextual line with no catalog hit: keep the first
		// qualifying word as a low-confidence candidate.
		if !matched && e.cfg.KeepUncataloged && len(words) > 0 {
			first := words[0]
			if len(first) >= 4 && !e.stopSet[first] {
				add(first, false)
			}
		}
	}

	results := make([]catalog.Match, 0, len(found))
	for _, c := range found {
		context := contextFor(lines, c.name)
		dosage := firstMatch(dosagePatterns, context)
		frequency := firstMatch(frequencyPatterns, context)

		confidence := e.cfg.BaseConfidence
		if !c.inCatalog {
			confidence = e.cfg.FloorConfidence
		}
		if dosage != "" {
			confidence += e.cfg.DosageBonus
		}
		if frequency != "" {
			confidence += e.cfg.FrequencyBonus
		}
		if confidence > e.cfg.MaxConfidence {
			confidence = e.cfg.MaxConfidence
		}

		results = append(results, catalog.Match{
			Name:       c.name,
			Dosage:     dosage,
			Frequency:  frequency,
			Confidence: confidence,
			Source:     "ocr",
			InCatalog:  c.inCatalog,
		})
	}
	return results
}

func (e *Extractor) findCatalogName(canonLine string) string {
	padded := " " + canonLine + " "
	for _, name := range e.names {
		if strings.Contains(padded, " "+name+" ") {
			return name
		}
	}
	return ""
}

func (e *Extractor) lineHasStopword(canonLine string) bool {
	for _, w := range strings.Fields(canonLine) {
		if e.stopSet[w] {
			return true
		}
	}
	return false
}

// hasPharmaContext holds when the line carries a dosage unit, a form
// word ("comprimé", "gélule"...) or a frequency word. Unit tokens are
// matched whole-word; attached forms like "1000MG" are caught by the
// dosage pattern.
func (e *Extractor) hasPharmaContext(canonLine, line string) bool {
	for _, w := range strings.Fields(canonLine) {
		if e.keywordSet[w] {
			return true
		}
	}
	return dosagePatterns[0].MatchString(line)
}

// contextFor gathers the lines mentioning the candidate, not the whole
// document: a dosage elsewhere on the page must not attach here.
func contextFor(lines []string, name string) string {
	var relevant []string
	for _, l := range lines {
		if strings.Contains(" "+catalog.Canonical(l)+" ", " "+name+" ") {
			relevant = append(relevant, l)
		}
	}
	return strings.Join(relevant, " ")
}

func firstMatch(patterns []*regexp.Regexp, s string) string {
	for _, p := range patterns {
		if m := p.FindString(s); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func cleanLineStart(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, " \t-–—•·*"))
}
