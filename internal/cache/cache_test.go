package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTTLCache[string, int](func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	require.False(t, ok)

	v, ok = c.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	c.Purge()
	_, ok = c.Get("b")
	require.False(t, ok)
}

func TestItemPercentageCacheKeysAreCaseSensitive(t *testing.T) {
	c := NewItemPercentageCache()
	c.Set(" SRV-Cleaning ", ItemPercentage{Percentage: decimal.NewFromInt(5), Found: true})

	got, ok := c.Get("SRV-Cleaning")
	require.True(t, ok)
	require.True(t, got.Found)
	require.True(t, got.Percentage.Equal(decimal.NewFromInt(5)))

	_, ok = c.Get("srv-cleaning")
	require.False(t, ok)

	c.Invalidate("SRV-Cleaning")
	_, ok = c.Get("SRV-Cleaning")
	require.False(t, ok)
}

func TestItemPercentageCacheIgnoresEmptyCode(t *testing.T) {
	c := NewItemPercentageCache()
	c.Set("  ", ItemPercentage{Found: true})
	_, ok := c.Get("")
	require.False(t, ok)
}
