package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	_ "github.com/lib/pq"
	"github.com/masarmall/leasing/internal/clock"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/export"
	"github.com/masarmall/leasing/internal/item"
	"github.com/masarmall/leasing/internal/leasecontract"
	"github.com/masarmall/leasing/internal/leaseinvoice"
	"github.com/masarmall/leasing/internal/leaseline"
	"github.com/masarmall/leasing/internal/migration"
	"github.com/masarmall/leasing/internal/observability"
	"github.com/masarmall/leasing/internal/portfoliometrics"
	"github.com/masarmall/leasing/internal/property"
	"github.com/masarmall/leasing/internal/ratelimit"
	"github.com/masarmall/leasing/internal/schedule"
	"github.com/masarmall/leasing/internal/scheduler"
	"github.com/masarmall/leasing/internal/server"
	"github.com/masarmall/leasing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		ratelimit.Module,

		// Functional Domains
		item.Module,
		property.Module,
		leaseline.Module,
		schedule.Module,
		leasecontract.Module,
		leaseinvoice.Module,
		export.Module,

		scheduler.Module,
		scheduler.RunnerModule,
		portfoliometrics.Module,
		server.Module,
	)
	app.Run()
}

// migrate applies the embedded schema without starting the application.
func migrate() error {
	cfg := config.Load()
	conn, err := sql.Open("postgres", db.PostgresDSN(db.ConfigFrom(cfg)))
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		return err
	}
	return migration.RunMigrations(conn)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
