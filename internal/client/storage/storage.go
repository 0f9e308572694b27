package storage

import (
	"context"
	"encoding/json"
)

// All entries share a fixed prefix so the state directory (or any other
// backing namespace) cannot collide with unrelated data.
const keyPrefix = "similar_"

// Store is the persistent key-value boundary. Implementations must be safe to
// call before any backing medium exists: reads report absent, writes are
// dropped.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Remove(ctx context.Context, key string) error
}

// SetJSON writes a typed value through the store. encoding/json round-trips
// the composite values kept here (timestamps, pointers-for-absent) losslessly.
func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// GetJSON reads a typed value. Absent entries return ok=false with the zero
// value; decode failures surface as errors so callers can treat the entry as
// absent and purge it.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var value T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return value, false, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}
