package schedule

import (
	"github.com/masarmall/leasing/internal/schedule/repository"
	"github.com/masarmall/leasing/internal/schedule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("schedule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
