package cache

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultPercentageTTL = 5 * time.Minute
	defaultMissTTL       = 30 * time.Second
)

// ItemPercentage is a cached service-percentage lookup result.
type ItemPercentage struct {
	Percentage decimal.Decimal
	Found      bool
}

// ItemPercentageCache memoizes item service-percentage lookups. Keys match
// item codes exactly.
type ItemPercentageCache interface {
	Get(itemCode string) (ItemPercentage, bool)
	Set(itemCode string, value ItemPercentage)
	Invalidate(itemCode string)
}

type itemPercentageCache struct {
	entries Cache[string, ItemPercentage]
	hitTTL  time.Duration
	missTTL time.Duration
}

func NewItemPercentageCache() ItemPercentageCache {
	return &itemPercentageCache{
		entries: NewTTLCache[string, ItemPercentage](),
		hitTTL:  defaultPercentageTTL,
		missTTL: defaultMissTTL,
	}
}

func (c *itemPercentageCache) Get(itemCode string) (ItemPercentage, bool) {
	return c.entries.Get(cacheKey("item_pct", itemCode))
}

func (c *itemPercentageCache) Set(itemCode string, value ItemPercentage) {
	key := cacheKey("item_pct", itemCode)
	if key == "item_pct" {
		return
	}
	ttl := c.hitTTL
	if !value.Found {
		ttl = c.missTTL
	}
	c.entries.Set(key, value, ttl)
}

func (c *itemPercentageCache) Invalidate(itemCode string) {
	c.entries.Delete(cacheKey("item_pct", itemCode))
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, trimmed)
	}
	return strings.Join(values, "|")
}
