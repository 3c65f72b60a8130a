// Package repository gives typed access to the stored records. The
// underlying store has no transactions, so every read-modify-write of
// a record goes through its repository's mutex: rapid concurrent
// updates to the same record serialize instead of losing writes.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/easypills/easypills/internal/storage"
)

// Stable record keys. The pv2 prefix is the storage schema version.
const (
	KeyMedications = "pv2.meds"
	KeyToday       = "pv2.today"
	KeyHistory     = "pv2.history"
	KeySettings    = "pv2.settings"
)

// AllKeys lists every record, for full resets.
var AllKeys = []string{KeyMedications, KeyToday, KeyHistory, KeySettings}

// ErrNotFound is returned when a referenced entity is absent.
var ErrNotFound = errors.New("repository: not found")

// readJSON loads and decodes a record. A missing record or corrupt
// stored JSON yields the fallback: the store self-heals on the next
// write instead of failing every read.
func readJSON[T any](ctx context.Context, store storage.Store, key string, fallback T) T {
	raw, err := store.Read(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return fallback
	}
	if err != nil {
		log.Printf("Failed to read %s: %v", key, err)
		return fallback
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Printf("Corrupt record %s, using default: %v", key, err)
		return fallback
	}
	return value
}

func writeJSON(ctx context.Context, store storage.Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Write(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
