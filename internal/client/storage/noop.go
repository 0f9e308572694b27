package storage

import "context"

// NoopStore is used when no persistence is available. Reads are absent,
// writes disappear.
type NoopStore struct{}

func (NoopStore) Set(ctx context.Context, key string, value []byte) error { return nil }

func (NoopStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopStore) Remove(ctx context.Context, key string) error { return nil }
