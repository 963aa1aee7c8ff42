package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	itemdomain "github.com/masarmall/leasing/internal/item/domain"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	leaseinvoicedomain "github.com/masarmall/leasing/internal/leaseinvoice/domain"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every persisted type in creation order.
func Models() []any {
	return []any{
		&itemdomain.Item{},
		&propertydomain.Property{},
		&propertydomain.Floor{},
		&propertydomain.FloorUnit{},
		&propertydomain.FloorUnitLog{},
		&leasecontractdomain.TaxTemplate{},
		&leasecontractdomain.LeaseContract{},
		&leasecontractdomain.LeaseContractDetail{},
		&leasecontractdomain.LeaseContractLog{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleEntry{},
		&leaseinvoicedomain.LeaseInvoice{},
	}
}

// Run applies the embedded SQL on postgres and falls back to AutoMigrate elsewhere.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "postgres", "":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	default:
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
}

// RunMigrations applies pending postgres migrations. The shared *sql.DB stays open.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Versions lists the embedded migration versions in order.
func Versions() ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if ok {
			out = append(out, version)
		}
	}
	return out, nil
}
