// Package stored gives a piece of client state durable, optionally
// time-limited persistence. It is the explicit-object rendition of the
// original UI's stored-state binding: hydration is a distinct phase, and
// consumers must not act on the value until Loaded reports true.
package stored

import (
	"context"
	"sync"
	"time"

	"github.com/traitgame/similar-backend/internal/client/storage"
)

type envelope[T any] struct {
	Value     T          `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type State[T any] struct {
	mu      sync.Mutex
	store   storage.Store
	key     string
	initial T
	ttl     time.Duration

	loaded bool
	value  T
}

// New binds a storage key to a typed state value. ttl of zero means entries
// never expire.
func New[T any](store storage.Store, key string, initial T, ttl time.Duration) *State[T] {
	return &State[T]{
		store:   store,
		key:     key,
		initial: initial,
		ttl:     ttl,
		value:   initial,
	}
}

// Load hydrates the value from the store. Expired or undecodable entries are
// purged and the initial value adopted. Load is idempotent; only the first
// successful call reads the store.
func (s *State[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	env, ok, err := storage.GetJSON[envelope[T]](ctx, s.store, s.key)
	if err != nil {
		// Treat an unreadable entry as absent and drop it.
		if removeErr := s.store.Remove(ctx, s.key); removeErr != nil {
			return removeErr
		}
		s.value = s.initial
		s.loaded = true
		return nil
	}

	switch {
	case !ok:
		s.value = s.initial
	case env.ExpiresAt != nil && !env.ExpiresAt.After(time.Now()):
		if err := s.store.Remove(ctx, s.key); err != nil {
			return err
		}
		s.value = s.initial
	default:
		s.value = env.Value
	}

	s.loaded = true
	return nil
}

// Loaded reports whether hydration has completed. Dependent side effects must
// wait for it.
func (s *State[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns the current value and whether it has been hydrated.
func (s *State[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// Set writes the value through to the store, stamping a fresh expiry when a
// TTL is configured.
func (s *State[T]) Set(ctx context.Context, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := envelope[T]{Value: value}
	if s.ttl > 0 {
		at := time.Now().Add(s.ttl)
		env.ExpiresAt = &at
	}
	if err := storage.SetJSON(ctx, s.store, s.key, env); err != nil {
		return err
	}

	s.value = value
	s.loaded = true
	return nil
}

// Reset purges the stored entry and restores the initial value.
func (s *State[T]) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, s.key); err != nil {
		return err
	}
	s.value = s.initial
	s.loaded = true
	return nil
}
