package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/adapter/repository/gormstore"
	"github.com/srgjo27/lodging_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/lodging_booking/internal/config"
	"github.com/srgjo27/lodging_booking/internal/core/ports"
	"github.com/srgjo27/lodging_booking/internal/platform/database"
)

type storage struct {
	listings     ports.ListingRepository
	reservations ports.ReservationRepository
	tx           ports.Transactor
	ping         func(ctx context.Context) error
	close        func() error
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	pgCfg := database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnectAttempts: cfg.Postgres.ConnectAttempts,
	}

	switch cfg.Storage.Engine {
	case "sql":
		db, err := database.NewPostgresDB(ctx, pgCfg, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			listings:     postgres.NewListingRepository(db),
			reservations: postgres.NewReservationRepository(db),
			tx:           postgres.NewTransactor(db),
			ping:         db.PingContext,
			close:        db.Close,
		}, nil

	case "gorm":
		dsn := pgCfg.DSN()
		if cfg.Storage.Dialect == gormstore.DialectSQLite {
			dsn = "file:" + cfg.Storage.SQLitePath + "?_foreign_keys=on"
		}

		gdb, err := gormstore.Open(cfg.Storage.Dialect, dsn)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}

		// postgres keeps the goose schema so the exclusion constraint exists
		if cfg.Storage.Dialect == gormstore.DialectPostgres {
			err = database.Migrate(sqlDB)
		} else {
			err = gormstore.AutoMigrate(gdb)
		}
		if err != nil {
			sqlDB.Close()
			return nil, err
		}

		logger.Info("gorm storage ready", zap.String("dialect", cfg.Storage.Dialect))

		return &storage{
			listings:     gormstore.NewListingRepository(gdb),
			reservations: gormstore.NewReservationRepository(gdb),
			tx:           gormstore.NewTransactor(gdb),
			ping:         sqlDB.PingContext,
			close:        sqlDB.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
}
