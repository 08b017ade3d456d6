package docrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	clock *fakeClock
	err   error
}

func (f *countingFetcher) Token(ctx context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	return &oauth2.Token{
		AccessToken: fmt.Sprintf("token-%d", f.calls),
		Expiry:      f.clock.Now().Add(time.Hour),
	}, nil
}

func TestTokenCache_ReusesUntilMargin(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	fetcher := &countingFetcher{clock: clock}
	cache := NewTokenCache(fetcher, WithClock(clock.Now))

	tok, err := cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)

	clock.Advance(49 * time.Minute)
	tok, err = cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)

	clock.Advance(1 * time.Minute)
	tok, err = cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok, "token must not be used past 50 minutes")
	assert.Equal(t, 2, fetcher.calls)
}

func TestTokenCache_CustomMargin(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	fetcher := &countingFetcher{clock: clock}
	cache := NewTokenCache(fetcher, WithClock(clock.Now), WithMargin(5*time.Minute))

	_, err := cache.AccessToken(context.Background())
	require.NoError(t, err)
	clock.Advance(54 * time.Minute)
	tok, err := cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)

	clock.Advance(time.Minute)
	tok, err = cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
}

func TestTokenCache_ZeroExpiryAssumesOneHour(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	calls := 0
	cache := NewTokenCache(TokenFetcherFunc(func(ctx context.Context) (*oauth2.Token, error) {
		calls++
		return &oauth2.Token{AccessToken: "static"}, nil
	}), WithClock(clock.Now))

	_, err := cache.AccessToken(context.Background())
	require.NoError(t, err)
	clock.Advance(51 * time.Minute)
	_, err = cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTokenCache_FetchErrorAndInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	fetcher := &countingFetcher{clock: clock, err: errors.New("invalid_client")}
	cache := NewTokenCache(fetcher, WithClock(clock.Now))

	_, err := cache.AccessToken(context.Background())
	assert.EqualError(t, err, "invalid_client")

	fetcher.err = nil
	_, err = cache.AccessToken(context.Background())
	require.NoError(t, err)
	cache.Invalidate()
	tok, err := cache.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
}

func TestTokenCache_ConcurrentCallersShareToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	fetcher := &countingFetcher{clock: clock}
	cache := NewTokenCache(fetcher, WithClock(clock.Now))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.AccessToken(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "token-1", tok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fetcher.calls)
}
