package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Read when nothing is stored under the key.
	ErrNotFound = errors.New("slot not found")
	// ErrMalformed marks a stored document that cannot be decoded.
	ErrMalformed = errors.New("slot malformed")
)

// Slot is a keyed blob store holding one JSON document per key. Writes replace
// the whole document.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by slots with a reachable backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadJSON decodes the document at key into dest. Decode failures wrap ErrMalformed.
func ReadJSON(ctx context.Context, slot Slot, key string, dest any) error {
	raw, err := slot.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return nil
}

// WriteJSON encodes value and replaces the document at key.
func WriteJSON(ctx context.Context, slot Slot, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	return slot.Write(ctx, key, raw)
}
