package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
}

func TestMemoryCache_MissIsEmptyNoError(t *testing.T) {
	c := NewMemoryCache(0)

	got, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryCache_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, c.Len(), "expired entry lingers until a Get touches it")

	got, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_FullClearAboveCap(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(5)

	for i := 0; i <= 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Minute))
	}
	assert.Equal(t, 6, c.Len())

	require.NoError(t, c.Set(ctx, "overflow", "v", time.Minute))
	assert.Equal(t, 1, c.Len())

	got, err := c.Get(ctx, "k0")
	require.NoError(t, err)
	assert.Empty(t, got, "earlier entries are gone after the clear")

	got, err = c.Get(ctx, "overflow")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryCache_Del(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Del(ctx, "k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}
