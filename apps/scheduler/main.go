package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/clock"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/item"
	"github.com/masarmall/leasing/internal/leasecontract"
	"github.com/masarmall/leasing/internal/leaseinvoice"
	"github.com/masarmall/leasing/internal/leaseline"
	"github.com/masarmall/leasing/internal/observability"
	"github.com/masarmall/leasing/internal/portfoliometrics"
	"github.com/masarmall/leasing/internal/property"
	"github.com/masarmall/leasing/internal/ratelimit"
	"github.com/masarmall/leasing/internal/schedule"
	"github.com/masarmall/leasing/internal/scheduler"
	"github.com/masarmall/leasing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,

		// Domain services required by the invoice jobs
		item.Module,
		property.Module,
		leaseline.Module,
		schedule.Module,
		leasecontract.Module,
		leaseinvoice.Module,

		scheduler.Module,
		scheduler.RunnerModule,
		portfoliometrics.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
