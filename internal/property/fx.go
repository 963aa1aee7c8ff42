package property

import (
	"github.com/masarmall/leasing/internal/property/repository"
	"github.com/masarmall/leasing/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
