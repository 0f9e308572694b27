package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/traitgame/similar-backend/internal/client/session"
	"github.com/traitgame/similar-backend/internal/logger"
)

const ratedCountKey = "rated_count"

func matchKey(matchID string) string { return "match:" + matchID }

func statsKey(textID1, textID2 string) string { return "stats:" + textID1 + ":" + textID2 }

type Config struct {
	// BaseURL and APIKey are the two required remote-store values. Both are
	// validated up front so a misconfigured process fails before any state
	// machinery starts.
	BaseURL string
	APIKey  string
	Session *session.Provider
	// Cache defaults to an in-memory cache when nil.
	Cache      Cache
	HTTPClient *http.Client
	Log        *logger.Logger
}

type Client struct {
	baseURL *url.URL
	apiKey  string
	session *session.Provider
	cache   Cache
	http    *http.Client
	log     *logger.Logger
}

var _ Repository = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("session provider required")
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cacheImpl := cfg.Cache
	if cacheImpl == nil {
		cacheImpl = NewMemoryCache()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		session: cfg.Session,
		cache:   cacheImpl,
		http:    httpClient,
		log:     cfg.Log.With("service", "MatchRepository"),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest interface{}) error {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var remote struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		if remote.Error == "" {
			remote.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, remote.Error)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) FetchMatch(ctx context.Context, matchID string) (*Match, error) {
	if matchID == "" {
		return nil, nil
	}

	if cached, ok := c.cache.Get(matchKey(matchID)); ok {
		if match, ok := cached.(*Match); ok {
			return match, nil
		}
	}

	var raw struct {
		ID     string   `json:"id"`
		Text1  *Text    `json:"text1"`
		Text2  *Text    `json:"text2"`
		Result *float64 `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/matches/"+matchID, nil, nil, &raw); err != nil {
		return nil, err
	}
	if raw.ID == "" || raw.Text1 == nil || raw.Text2 == nil {
		return nil, fmt.Errorf("match %s: response missing texts", matchID)
	}

	match := &Match{ID: raw.ID, Text1: *raw.Text1, Text2: *raw.Text2, Result: raw.Result}
	c.cache.Set(matchKey(matchID), match)
	return match, nil
}

func (c *Client) FetchMatchResult(ctx context.Context, matchID string) (*float64, error) {
	// Deliberately uncached: this probe decides whether persisted state is
	// still live.
	var resp struct {
		Result *float64 `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/matches/"+matchID+"/result", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) CheckoutMatch(ctx context.Context, matchID string) (string, error) {
	sessionID, err := c.session.ID(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]string{"session_id": sessionID}
	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/matches/"+matchID+"/checkout", nil, body, &resp); err != nil {
		return "", err
	}

	c.cache.Invalidate(matchKey(matchID))
	return resp.MatchID, nil
}

func (c *Client) GetOrCreateMatch(ctx context.Context) (string, error) {
	sessionID, err := c.session.ID(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]string{"session_id": sessionID}
	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/matches", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.MatchID == "" {
		return "", fmt.Errorf("get-or-create: response missing match id")
	}

	c.cache.Invalidate(matchKey(resp.MatchID))
	return resp.MatchID, nil
}

func (c *Client) UpdateMatchResult(ctx context.Context, matchID string, result float64) (*Match, error) {
	body := map[string]float64{"result": result}
	var raw struct {
		ID     string   `json:"id"`
		Result *float64 `json:"result"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/matches/"+matchID+"/result", nil, body, &raw); err != nil {
		return nil, err
	}

	// The mutation makes the cached match, every pair aggregate, and the
	// session count stale.
	c.cache.Invalidate(matchKey(matchID))
	c.cache.InvalidatePrefix("stats:")
	c.cache.Invalidate(ratedCountKey)

	return &Match{ID: raw.ID, Result: raw.Result}, nil
}

func (c *Client) FetchTraitPairStats(ctx context.Context, textID1, textID2 string) (*TraitPairStats, error) {
	if textID1 == "" || textID2 == "" {
		return nil, nil
	}

	key := statsKey(textID1, textID2)
	if cached, ok := c.cache.Get(key); ok {
		if stats, ok := cached.(*TraitPairStats); ok {
			return stats, nil
		}
	}

	query := url.Values{}
	query.Set("text_id_1", textID1)
	query.Set("text_id_2", textID2)

	var stats TraitPairStats
	if err := c.do(ctx, http.MethodGet, "/api/stats/pair", query, nil, &stats); err != nil {
		return nil, err
	}

	c.cache.Set(key, &stats)
	return &stats, nil
}

func (c *Client) FetchSessionRatedCount(ctx context.Context) (int64, error) {
	if cached, ok := c.cache.Get(ratedCountKey); ok {
		if count, ok := cached.(int64); ok {
			return count, nil
		}
	}

	sessionID, err := c.session.ID(ctx)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/stats/sessions/"+sessionID+"/rated-count", nil, nil, &resp); err != nil {
		return 0, err
	}

	c.cache.Set(ratedCountKey, resp.Count)
	return resp.Count, nil
}
