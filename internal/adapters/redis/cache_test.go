package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "leadscout/internal/adapters/redis"
	"leadscout/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	in := domain.Lead{SourceStore: domain.StoreIOS, AppIdentifier: "com.a", Rating: 2.5, RatingsCount: 300}
	require.NoError(t, c.Set(ctx, "lead:ios:com.a", in, 60))
	assert.True(t, mr.Exists("leadscout:lead:ios:com.a"))

	var out domain.Lead
	ok, err := c.Get(ctx, "lead:ios:com.a", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, c.Del(ctx, "lead:ios:com.a"))
	ok, err = c.Get(ctx, "lead:ios:com.a", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 5))
	mr.FastForward(6 * time.Second)

	var out map[string]int
	ok, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_UnreadableEntryIsAMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("leadscout:k", "not json"))

	var out domain.Lead
	ok, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	var out domain.Lead
	_, err := c.Get(context.Background(), "k", &out)
	assert.Error(t, err)
}
