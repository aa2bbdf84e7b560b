package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client using miniredis
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("://nope")
	assert.Error(t, err)
}

func TestClient_SetExists(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key1", "value1", time.Hour))

	val, err := mr.Get("test:key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", val)
	assert.Equal(t, time.Hour, mr.TTL("test:key1"))

	ok, err := client.Exists(ctx, "test:key1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_JSONRoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Total int    `json:"total"`
		Label string `json:"label"`
	}

	require.NoError(t, client.SetJSON(ctx, PrefixQuoteCount+"abc", payload{Total: 42, Label: "x"}, time.Minute))

	var got payload
	require.NoError(t, client.GetJSON(ctx, PrefixQuoteCount+"abc", &got))
	assert.Equal(t, payload{Total: 42, Label: "x"}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, PrefixQuoteCount+"abc", &got), ErrMiss)
}

func TestClient_GetJSON_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var v map[string]any
	err := client.GetJSON(context.Background(), "bad", &v)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestClient_DeletePattern(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"quote:count:1", "quote:count:2", "companies:stats"} {
		require.NoError(t, client.Set(ctx, k, "v", time.Hour))
	}

	deleted, err := client.DeletePattern(ctx, PrefixQuoteCount+"*")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.False(t, mr.Exists("quote:count:1"))
	assert.True(t, mr.Exists("companies:stats"))
}

func TestClient_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 30*time.Second))
	require.NoError(t, client.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestClient_TryLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.TryLock(ctx, PrefixJobLock+"stats", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.TryLock(ctx, PrefixJobLock+"stats", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = client.TryLock(ctx, PrefixJobLock+"stats", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
