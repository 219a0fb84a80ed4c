package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	redisad "dineline_reviews/internal/adapters/redis"
	"dineline_reviews/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	in := []domain.ExternalReview{{
		ID:          "r1",
		Rating:      3,
		TimeCreated: time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC),
		Text:        "Good",
		User:        &domain.ExternalUser{Name: "Alice"},
	}}
	require.NoError(t, c.Set(ctx, "yelp:reviews:biz", in, 60))
	require.True(t, mr.Exists("test:yelp:reviews:biz"))
	require.Equal(t, 60*time.Second, mr.TTL("test:yelp:reviews:biz"))

	var out []domain.ExternalReview
	ok, err := c.Get(ctx, "yelp:reviews:biz", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	require.NoError(t, c.Del(ctx, "yelp:reviews:biz"))
	ok, err = c.Get(ctx, "yelp:reviews:biz", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 1))
	mr.FastForward(2 * time.Second)

	var out map[string]int
	ok, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_CorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("test:bad", "{not json"))

	var out map[string]int
	ok, err := c.Get(context.Background(), "bad", &out)
	require.Error(t, err)
	require.False(t, ok)
}
