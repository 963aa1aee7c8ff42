package leaseinvoice

import (
	"github.com/masarmall/leasing/internal/leaseinvoice/repository"
	"github.com/masarmall/leasing/internal/leaseinvoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leaseinvoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
