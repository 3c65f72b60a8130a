package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		Items: []Entry{
			{Name: "DOLIPRANE 1000 MG", Dosage: "1000 mg", Cip13: "3400936195592"},
			{Name: "SPASFON", Dosage: "80 mg"},
			{Name: "DOLIPRANE 1000 MG", Dosage: "1000 mg"}, // duplicate label
		},
		IndexByCip13: map[string]int{"3400936195592": 0},
	}
}

type recordingFallback struct {
	match  *Match
	err    error
	calls  int
	lastID string
}

func (f *recordingFallback) Lookup(ctx context.Context, cip13 string) (*Match, error) {
	f.calls++
	f.lastID = cip13
	return f.match, f.err
}

func TestIsValidCIP13(t *testing.T) {
	require.True(t, IsValidCIP13("3400936195592"))
	require.False(t, IsValidCIP13("340093619559"))   // 12 digits
	require.False(t, IsValidCIP13("34009361955920")) // 14 digits
	require.False(t, IsValidCIP13("34009361955Z2"))
	require.False(t, IsValidCIP13(""))
}

func TestResolveByBarcode_LocalHit(t *testing.T) {
	fb := &recordingFallback{}
	svc := NewFromCatalog(testCatalog(), fb)

	match := svc.ResolveByBarcode(context.Background(), "3400936195592")
	require.NotNil(t, match)
	require.Equal(t, "DOLIPRANE 1000 MG", match.Name)
	require.Equal(t, "1000 mg", match.Dosage)
	require.Equal(t, 0.98, match.Confidence)
	require.Equal(t, "barcode", match.Source)
	require.True(t, match.InCatalog)

	// The local index answered; the fallback never ran.
	require.Zero(t, fb.calls)
}

func TestResolveByBarcode_MalformedCode(t *testing.T) {
	fb := &recordingFallback{match: &Match{Name: "SHOULD NOT APPEAR"}}
	svc := NewFromCatalog(testCatalog(), fb)

	require.Nil(t, svc.ResolveByBarcode(context.Background(), "12345"))
	require.Zero(t, fb.calls)
}

func TestResolveByBarcode_FallbackMiss(t *testing.T) {
	fb := &recordingFallback{match: &Match{
		Name: "AERIUS 5 mg", Dosage: "5 mg", Cip13: "3400930000001",
		Confidence: 0.95, Source: "barcode",
	}}
	svc := NewFromCatalog(testCatalog(), fb)

	match := svc.ResolveByBarcode(context.Background(), "3400930000001")
	require.NotNil(t, match)
	require.Equal(t, "AERIUS 5 mg", match.Name)
	require.Equal(t, 0.95, match.Confidence)
	require.Equal(t, 1, fb.calls)
	require.Equal(t, "3400930000001", fb.lastID)
}

func TestResolveByBarcode_FallbackFailureAbsorbed(t *testing.T) {
	fb := &recordingFallback{err: errors.New("api down")}
	svc := NewFromCatalog(testCatalog(), fb)

	require.Nil(t, svc.ResolveByBarcode(context.Background(), "3400930000001"))
}

func TestResolveByBarcode_NoFallback(t *testing.T) {
	svc := NewFromCatalog(testCatalog(), nil)
	require.Nil(t, svc.ResolveByBarcode(context.Background(), "3400930000001"))
}

func TestNames_CanonicalAndDeduped(t *testing.T) {
	svc := NewFromCatalog(testCatalog(), nil)
	require.Equal(t, []string{"DOLIPRANE 1000 MG", "SPASFON"}, svc.Names())
}

func TestSearchByName(t *testing.T) {
	svc := NewFromCatalog(testCatalog(), nil)

	results := svc.SearchByName("doli", 10)
	require.Len(t, results, 2)
	require.Equal(t, "DOLIPRANE 1000 MG", results[0].Name)

	require.Empty(t, svc.SearchByName("d", 10)) // too short
	require.Len(t, svc.SearchByName("doli", 1), 1)
}

func TestLoad_MissingFileYieldsEmptyCatalog(t *testing.T) {
	svc := New("/nonexistent/catalog.json", nil)
	require.False(t, svc.Loaded())
	items, cip13 := svc.Stats()
	require.Zero(t, items)
	require.Zero(t, cip13)
	require.Nil(t, svc.ResolveByBarcode(context.Background(), "3400936195592"))
}

func TestCanonical(t *testing.T) {
	require.Equal(t, "DOLIPRANE 1000MG", Canonical("Doliprane® 1000mg"))
	require.Equal(t, "GELULES D OMEPRAZOLE", Canonical("  gélules   d'oméprazole "))
	require.Equal(t, "", Canonical("®©—"))
}

func TestStripDiacritics(t *testing.T) {
	require.Equal(t, "GELULE", StripDiacritics("GÉLULE"))
	require.Equal(t, "comprime pellicule", StripDiacritics("comprimé pelliculé"))
}

func TestExtractDosageFromName(t *testing.T) {
	require.Equal(t, "1000 mg", ExtractDosageFromName("DOLIPRANE 1000 mg, comprimé"))
	require.Equal(t, "0.5 mg", ExtractDosageFromName("XANAX 0,5MG"))
	require.Equal(t, "", ExtractDosageFromName("SPASFON comprimé"))
}
