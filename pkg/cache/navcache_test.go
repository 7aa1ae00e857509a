package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navPayload struct {
	SchemeCode int      `json:"schemeCode"`
	Points     []string `json:"points"`
}

func TestMemoryNavCache_RoundTrip(t *testing.T) {
	c := NewMemoryNavCache(time.Minute)
	ctx := context.Background()
	in := navPayload{SchemeCode: 120503, Points: []string{"58.41", "58.02"}}

	require.NoError(t, c.Set(ctx, 120503, in))

	var out navPayload
	require.NoError(t, c.Get(ctx, 120503, &out))
	assert.Equal(t, in, out)
}

func TestMemoryNavCache_Miss(t *testing.T) {
	c := NewMemoryNavCache(time.Minute)

	var out navPayload
	assert.ErrorIs(t, c.Get(context.Background(), 999999, &out), ErrCacheMiss)
}

func TestMemoryNavCache_Expiry(t *testing.T) {
	c := NewMemoryNavCache(10 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 120503, navPayload{SchemeCode: 120503}))

	time.Sleep(20 * time.Millisecond)

	var out navPayload
	assert.ErrorIs(t, c.Get(ctx, 120503, &out), ErrCacheMiss)
}

func TestMemoryNavCache_Invalidate(t *testing.T) {
	c := NewMemoryNavCache(time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 120503, navPayload{SchemeCode: 120503}))
	require.NoError(t, c.Invalidate(ctx, 120503))

	var out navPayload
	assert.ErrorIs(t, c.Get(ctx, 120503, &out), ErrCacheMiss)
}
