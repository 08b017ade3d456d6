package docrepo

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultTokenMargin keeps a nominal 60 minute token in use for at most 50 minutes
	DefaultTokenMargin = 10 * time.Minute
	// assumedTokenLifetime applies when the token endpoint omits expires_in
	assumedTokenLifetime = 60 * time.Minute
)

// TokenFetcher obtains a fresh access token
type TokenFetcher interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenFetcherFunc adapts a function to TokenFetcher
type TokenFetcherFunc func(ctx context.Context) (*oauth2.Token, error)

// Token calls f(ctx)
func (f TokenFetcherFunc) Token(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// TokenCache holds one bearer token and refreshes it once it is within
// margin of its expiry. Safe for concurrent use.
type TokenCache struct {
	fetcher TokenFetcher
	now     func() time.Time
	margin  time.Duration

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenCacheOption configures a TokenCache
type TokenCacheOption func(*TokenCache)

// WithClock overrides time.Now
func WithClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

// WithMargin sets how long before expiry a token is refreshed
func WithMargin(margin time.Duration) TokenCacheOption {
	return func(c *TokenCache) {
		if margin >= 0 {
			c.margin = margin
		}
	}
}

// NewTokenCache creates a token cache
func NewTokenCache(fetcher TokenFetcher, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		fetcher: fetcher,
		now:     time.Now,
		margin:  DefaultTokenMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns a cached token or fetches a new one
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.expiresAt.Add(-c.margin)) {
		return c.token, nil
	}

	tok, err := c.fetcher.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == nil || tok.AccessToken == "" {
		return "", errors.New("token endpoint returned an empty access token")
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(assumedTokenLifetime)
	}
	c.token = tok.AccessToken
	c.expiresAt = expiresAt
	return c.token, nil
}

// Invalidate drops the cached token, e.g. after the repository answered 401
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
