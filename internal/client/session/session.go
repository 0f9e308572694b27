// Package session scopes a rater's activity without authentication: a random
// identifier created on first use and persisted for the profile's lifetime,
// never rotated.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/traitgame/similar-backend/internal/client/storage"
)

const sessionKey = "similarity_game_session_id"

type Provider struct {
	store storage.Store

	once sync.Once
	id   string
	err  error
}

func NewProvider(store storage.Store) *Provider {
	return &Provider{store: store}
}

// ID returns the session identifier, creating and persisting it on first
// call. The value is computed once per process and reused for every scoped
// remote call.
func (p *Provider) ID(ctx context.Context) (string, error) {
	p.once.Do(func() {
		existing, ok, err := storage.GetJSON[string](ctx, p.store, sessionKey)
		if err == nil && ok && existing != "" {
			p.id = existing
			return
		}

		id := uuid.NewString()
		if err := storage.SetJSON(ctx, p.store, sessionKey, id); err != nil {
			p.err = err
			return
		}
		p.id = id
	})
	return p.id, p.err
}
