package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/cache"
	"github.com/masarmall/leasing/internal/item/domain"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type LookupParams struct {
	fx.In

	DB    *gorm.DB
	Repo  domain.Repository
	Cache cache.ItemPercentageCache `optional:"true"`
}

// ServicePercentageLookup resolves an item reference, either a snowflake id or
// an item code, to the item's service percentage.
type ServicePercentageLookup struct {
	db    *gorm.DB
	repo  domain.Repository
	cache cache.ItemPercentageCache
}

func NewServicePercentageLookup(p LookupParams) leaselinedomain.PercentageLookup {
	c := p.Cache
	if c == nil {
		c = cache.NewItemPercentageCache()
	}
	return &ServicePercentageLookup{db: p.DB, repo: p.Repo, cache: c}
}

func (l *ServicePercentageLookup) ServicePercentage(ctx context.Context, ref string) (decimal.Decimal, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return decimal.Zero, false, nil
	}
	if cached, ok := l.cache.Get(ref); ok {
		return cached.Percentage, cached.Found, nil
	}

	item, err := l.find(ctx, ref)
	if err != nil {
		return decimal.Zero, false, err
	}

	result := cache.ItemPercentage{}
	if item != nil && !item.Disabled {
		result = cache.ItemPercentage{Percentage: item.ServicePercentage, Found: true}
	}
	l.cache.Set(ref, result)
	return result.Percentage, result.Found, nil
}

func (l *ServicePercentageLookup) find(ctx context.Context, ref string) (*domain.Item, error) {
	if id, err := snowflake.ParseString(ref); err == nil && id != 0 {
		item, err := l.repo.FindByID(ctx, l.db, id)
		if err != nil || item != nil {
			return item, err
		}
	}
	return l.repo.FindByCode(ctx, l.db, ref)
}
