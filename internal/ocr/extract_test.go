package ocr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testExtractor(cfg Config) *Extractor {
	return NewExtractor([]string{"DOLIPRANE", "SPASFON LYOC", "LEVOTHYROX"}, cfg)
}

func TestExtractCandidates_CatalogHitWithDosage(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("Docteur MARTIN\nDOLIPRANE 1000 mg\n1 comprimé le matin")

	require.Len(t, matches, 1)
	m := matches[0]
	require.Equal(t, "DOLIPRANE", m.Name)
	require.Equal(t, "1000 MG", m.Dosage)
	require.Empty(t, m.Frequency) // the frequency line never names the medication
	require.InDelta(t, 0.9, m.Confidence, 0.001)
	require.Equal(t, "ocr", m.Source)
	require.True(t, m.InCatalog)
}

func TestExtractCandidates_TwoWordName(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("SPASFON LYOC 2 fois par jour")

	require.Len(t, matches, 1)
	m := matches[0]
	require.Equal(t, "SPASFON LYOC", m.Name)
	require.Empty(t, m.Dosage)
	require.Equal(t, "2 FOIS PAR JOUR", m.Frequency)
	require.InDelta(t, 0.8, m.Confidence, 0.001)
}

func TestExtractCandidates_ConfidenceCapped(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("DOLIPRANE 1000 mg 3 fois par jour")

	require.Len(t, matches, 1)
	require.InDelta(t, 0.99, matches[0].Confidence, 0.001)
}

func TestExtractCandidates_BoilerplateRejected(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates(
		"Docteur DOLIPRANE\nPharmacie du centre, 3 rue des Lilas\nTél 01 02 03 04 05")

	require.Empty(t, matches)
}

func TestExtractCandidates_UncatalogedFloor(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("AMOXICILLINE 500 mg")

	require.Len(t, matches, 1)
	m := matches[0]
	require.Equal(t, "AMOXICILLINE", m.Name)
	require.False(t, m.InCatalog)
	require.Equal(t, "500 MG", m.Dosage)
	require.InDelta(t, 0.65, m.Confidence, 0.001) // floor 0.45 + dosage bonus
}

func TestExtractCandidates_UncatalogedDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepUncataloged = false
	e := testExtractor(cfg)

	require.Empty(t, e.ExtractCandidates("AMOXICILLINE 500 mg"))
}

func TestExtractCandidates_NoPharmaContext(t *testing.T) {
	e := testExtractor(DefaultConfig())

	// No unit, form or frequency word anywhere: nothing qualifies.
	require.Empty(t, e.ExtractCandidates("Revenez dans une semaine\nRepos conseillé"))
}

func TestExtractCandidates_Dedup(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("DOLIPRANE 1000 mg\nDOLIPRANE 1000 mg le soir")
	require.Len(t, matches, 1)
}

func TestExtractCandidates_DiacriticsAndCase(t *testing.T) {
	e := testExtractor(DefaultConfig())

	matches := e.ExtractCandidates("lévothyrox 100 µg le matin")
	require.Len(t, matches, 1)
	require.Equal(t, "LEVOTHYROX", matches[0].Name)
}

func TestExtractCandidates_Empty(t *testing.T) {
	e := testExtractor(DefaultConfig())
	require.Empty(t, e.ExtractCandidates(""))
	require.Empty(t, e.ExtractCandidates("\n\n  \n"))
}
