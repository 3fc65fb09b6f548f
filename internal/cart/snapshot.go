package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/ecofinds-backend/internal/products"
	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
)

// SnapshotVersion is written into every saved cart. Bare JSON arrays predate
// the envelope and load as version 0.
const SnapshotVersion = 1

type snapshotEnvelope struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// EncodeSnapshot serialises entries inside the versioned envelope.
func EncodeSnapshot(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(snapshotEnvelope{Version: SnapshotVersion, Entries: entries})
}

// DecodeSnapshot parses a stored cart. Empty input yields an empty cart. Any
// structural problem wraps storage.ErrMalformed.
func DecodeSnapshot(raw []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Entry{}, nil
	}

	var entries []Entry
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: legacy cart: %v", storage.ErrMalformed, err)
		}
	case '{':
		var envelope snapshotEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: cart envelope: %v", storage.ErrMalformed, err)
		}
		if envelope.Version < 0 || envelope.Version > SnapshotVersion {
			return nil, fmt.Errorf("%w: unsupported cart version %d", storage.ErrMalformed, envelope.Version)
		}
		entries = envelope.Entries
	default:
		return nil, fmt.Errorf("%w: unexpected cart payload", storage.ErrMalformed)
	}

	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func validateEntries(entries []Entry) error {
	seen := make(map[products.ID]struct{}, len(entries))
	for i, entry := range entries {
		if entry.ID.IsZero() {
			return fmt.Errorf("%w: entry %d has no id", storage.ErrMalformed, i)
		}
		if entry.Quantity < 1 {
			return fmt.Errorf("%w: entry %s has quantity %d", storage.ErrMalformed, entry.ID, entry.Quantity)
		}
		if entry.Price.IsNegative() || entry.CO2Saved.IsNegative() {
			return fmt.Errorf("%w: entry %s has a negative amount", storage.ErrMalformed, entry.ID)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate entry %s", storage.ErrMalformed, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// SnapshotAdapter persists one cart to a storage slot key.
type SnapshotAdapter struct {
	slot    storage.Slot
	key     string
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

func NewSnapshotAdapter(slot storage.Slot, key string, logg *logger.Logger, m *metrics.CartMetrics) *SnapshotAdapter {
	if logg == nil {
		logg = logger.Nop()
	}
	return &SnapshotAdapter{slot: slot, key: key, logg: logg, metrics: m}
}

// Load returns the stored entries. Missing, unreadable and malformed snapshots
// all come back as an empty cart.
func (a *SnapshotAdapter) Load(ctx context.Context) []Entry {
	raw, err := a.slot.Read(ctx, a.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Entry{}
	}
	ctx = a.logg.WithField(ctx, "slot_key", a.key)
	if err != nil {
		a.metrics.IncPersistenceFailure("load")
		a.logg.Warn(ctx, "cart snapshot unreadable; starting empty", err)
		return []Entry{}
	}
	entries, err := DecodeSnapshot(raw)
	if err != nil {
		a.metrics.IncPersistenceFailure("load")
		a.logg.Warn(ctx, "cart snapshot malformed; starting empty", err)
		return []Entry{}
	}
	return entries
}

// Save overwrites the slot with entries.
func (a *SnapshotAdapter) Save(ctx context.Context, entries []Entry) error {
	raw, err := EncodeSnapshot(entries)
	if err != nil {
		return err
	}
	return a.slot.Write(ctx, a.key, raw)
}
