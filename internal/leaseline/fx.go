package leaseline

import (
	"github.com/masarmall/leasing/internal/leaseline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leaseline.service",
	fx.Provide(service.New),
)
