// Package game drives the rating loop: acquire a match, collect a rating,
// show results, advance. The controller is an explicit state machine so the
// transitions are testable without any rendering layer.
package game

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/traitgame/similar-backend/internal/client/api"
	"github.com/traitgame/similar-backend/internal/client/stored"
	"github.com/traitgame/similar-backend/internal/logger"
)

type State int

const (
	StateLoading State = iota
	StateRating
	StateResults
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRating:
		return "rating"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}

// DefaultRating is where the slider starts.
const DefaultRating = 5.0

var (
	ErrInvalidRating = errors.New("rating must be a finite number between 0 and 10")
	ErrWrongState    = errors.New("operation not valid in current state")
)

// Controller owns the lifecycle state. A single in-flight guard suppresses
// re-entrant transitions; the persisted match id is only ever written after
// the remote call that produced it succeeded.
type Controller struct {
	repo    api.Repository
	matchID *stored.State[string]
	log     *logger.Logger

	mu         sync.Mutex
	inFlight   bool
	state      State
	current    *api.Match
	pending    float64
	lastRating *float64
}

func NewController(repo api.Repository, matchID *stored.State[string], log *logger.Logger) *Controller {
	return &Controller{
		repo:    repo,
		matchID: matchID,
		log:     log.With("service", "GameController"),
		state:   StateLoading,
		pending: DefaultRating,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the match being presented, nil while loading.
func (c *Controller) Current() *api.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) Pending() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Controller) SetPending(value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = value
}

// LastRating is the value submitted for the match currently on display in
// results, nil outside of results.
func (c *Controller) LastRating() *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRating
}

// begin claims the in-flight guard. It returns false when another transition
// is already running, in which case the caller must do nothing.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Reconcile aligns the controller with persisted and remote truth. It is the
// mount/effect entry point and is safe to call on every cycle: it does
// nothing while hydration is pending, while another transition runs, or while
// results are on display. On any failure the controller stays in loading and
// the next cycle retries.
func (c *Controller) Reconcile(ctx context.Context) error {
	if !c.matchID.Loaded() {
		// Hydration gate: acting now could orphan a persisted match.
		return nil
	}
	if c.State() == StateResults {
		return nil
	}
	if !c.begin() {
		return nil
	}
	defer c.end()

	if id, _ := c.matchID.Get(); id != "" {
		result, err := c.repo.FetchMatchResult(ctx, id)
		if err == nil && result == nil {
			// Unrated and still present: reclaim it.
			_, checkoutErr := c.repo.CheckoutMatch(ctx, id)
			if checkoutErr == nil {
				return c.present(ctx, id)
			}
			c.log.Warn("Checkout failed, acquiring new match", "match_id", id, "error", checkoutErr)
		} else if err != nil && !errors.Is(err, api.ErrNotFound) {
			c.log.Warn("Match status check failed, acquiring new match", "match_id", id, "error", err)
		}
		// Rated, missing, or unreachable: fall through to acquisition.
	}

	return c.acquire(ctx)
}

// acquire gets a fresh match id, persists it, and presents it.
func (c *Controller) acquire(ctx context.Context) error {
	id, err := c.repo.GetOrCreateMatch(ctx)
	if err != nil {
		c.setState(StateLoading)
		c.log.Error("Match acquisition failed", "error", err)
		return err
	}
	// Persist only after the remote call succeeded, so an interruption never
	// leaves an unconfirmed id behind.
	if err := c.matchID.Set(ctx, id); err != nil {
		c.log.Warn("Persisting match id failed", "match_id", id, "error", err)
	}
	return c.present(ctx, id)
}

// present loads the full match and enters rating.
func (c *Controller) present(ctx context.Context, id string) error {
	match, err := c.repo.FetchMatch(ctx, id)
	if err != nil {
		c.setState(StateLoading)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = match
	c.state = StateRating
	return nil
}

// Submit records the pending rating for the current match. On failure the
// controller stays in rating with the pending value intact so the user can
// retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRating || c.current == nil {
		c.mu.Unlock()
		return ErrWrongState
	}
	id := c.current.ID
	value := c.pending
	c.mu.Unlock()

	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > 10 {
		return ErrInvalidRating
	}

	if !c.begin() {
		return nil
	}
	defer c.end()

	if _, err := c.repo.UpdateMatchResult(ctx, id, value); err != nil {
		c.log.Error("Rating submission failed", "match_id", id, "error", err)
		return err
	}

	// The match id stays current while its results are on display.
	c.mu.Lock()
	c.lastRating = &value
	c.state = StateResults
	c.mu.Unlock()
	return nil
}

// NextPair leaves results: clear the persisted id and display rating, drop to
// loading, and acquire a fresh match.
func (c *Controller) NextPair(ctx context.Context) error {
	if c.State() != StateResults {
		return ErrWrongState
	}
	if !c.begin() {
		return nil
	}
	defer c.end()

	c.mu.Lock()
	c.lastRating = nil
	c.pending = DefaultRating
	c.current = nil
	c.state = StateLoading
	c.mu.Unlock()

	if err := c.matchID.Reset(ctx); err != nil {
		c.log.Warn("Clearing persisted match id failed", "error", err)
	}

	return c.acquire(ctx)
}
