package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"projecttracker/internal/config"
	"projecttracker/internal/model"
)

// Open connects to the configured medium. The returned func releases it.
func Open(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, func(), error) {
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	}

	var (
		dialector gorm.Dialector
		release   = func() {}
	)

	switch cfg.Driver {
	case "postgres":
		pool, err := NewConnection(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
		release = func() {
			_ = sqlDB.Close()
			pool.Close()
		}
	case "sqlite":
		logger.Info("Opening embedded SQLite database", zap.String("path", cfg.Path))
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := sqliteHandle(gdb)
		if err != nil {
			return nil, nil, err
		}
		// one connection: writes serialize, and ":memory:" stays a single database
		sqlDB.SetMaxOpenConns(1)
		release = func() { _ = sqlDB.Close() }
	}

	if err := registerImmutable(gdb); err != nil {
		release()
		return nil, nil, err
	}
	return gdb, release, nil
}

// sqliteHandle returns the pool under gdb, closing the connection when
// gorm cannot hand it out.
func sqliteHandle(gdb *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		if c, ok := gdb.ConnPool.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	return sqlDB, nil
}

// Bootstrap creates any missing tables and indexes. There is no schema
// versioning; changed columns need an out-of-band reload.
func Bootstrap(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}

// registerImmutable makes every ORM update or delete fail.
func registerImmutable(gdb *gorm.DB) error {
	reject := func(tx *gorm.DB) {
		_ = tx.AddError(model.ErrImmutable)
	}
	if err := gdb.Callback().Update().Before("gorm:update").Register("tracker:immutable_update", reject); err != nil {
		return fmt.Errorf("failed to register update guard: %w", err)
	}
	if err := gdb.Callback().Delete().Before("gorm:delete").Register("tracker:immutable_delete", reject); err != nil {
		return fmt.Errorf("failed to register delete guard: %w", err)
	}
	return nil
}

// Ping checks the medium is reachable.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
