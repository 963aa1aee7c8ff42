package leasecontract

import (
	"github.com/masarmall/leasing/internal/leasecontract/repository"
	"github.com/masarmall/leasing/internal/leasecontract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leasecontract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
