package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

func Open(dialect, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	if dialect == DialectSQLite {
		// one writer at a time; also keeps a :memory: database on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db.DB(): %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// AutoMigrate creates the schema for engines that are not managed by the
// SQL migrations (sqlite).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&listingModel{}, &reservationModel{})
}

type txKey struct{}

type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, t.db, fn)
}

// withinTx joins the transaction already carried by ctx or opens a new one.
func withinTx(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

const pgExclusionViolation = "23P01"

// translate maps constraint violations that carry domain meaning. Driver
// messages are not carried into the domain error; only a constraint name is.
func translate(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation:
		return fmt.Errorf("%w: %s", domain.ErrDateConflict, pgErr.ConstraintName)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrListingNotFound
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w: check constraint violated", domain.ErrInvalidInput)
	}
	return err
}
