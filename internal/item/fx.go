package item

import (
	"github.com/masarmall/leasing/internal/cache"
	"github.com/masarmall/leasing/internal/item/repository"
	"github.com/masarmall/leasing/internal/item/service"
	"go.uber.org/fx"
)

var Module = fx.Module("item.service",
	fx.Provide(repository.Provide),
	fx.Provide(cache.NewItemPercentageCache),
	fx.Provide(service.New),
	fx.Provide(service.NewServicePercentageLookup),
)
