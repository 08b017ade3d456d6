package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database is the service's postgres handle
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

type dbOptions struct {
	logLevel      string
	slowThreshold time.Duration
	attempts      int
	retryWait     time.Duration
}

// DatabaseOption tunes NewDatabase
type DatabaseOption func(*dbOptions)

// WithQueryLogLevel sets the level gorm statements are logged at
func WithQueryLogLevel(level string) DatabaseOption {
	return func(o *dbOptions) { o.logLevel = level }
}

// WithSlowQueryThreshold makes statements slower than d log a warning
func WithSlowQueryThreshold(d time.Duration) DatabaseOption {
	return func(o *dbOptions) { o.slowThreshold = d }
}

// WithConnectRetry retries the initial ping up to attempts times, wait apart
func WithConnectRetry(attempts int, wait time.Duration) DatabaseOption {
	return func(o *dbOptions) {
		o.attempts = attempts
		o.retryWait = wait
	}
}

// NewDatabase opens the postgres pool described by cfg and waits until it
// answers a ping. Statements are logged through zap.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger, opts ...DatabaseOption) (*Database, error) {
	o := dbOptions{logLevel: "warn", slowThreshold: 200 * time.Millisecond, attempts: 1}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.MapGormLogLevel(o.logLevel), o.slowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBName, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	d := &Database{DB: db, sql: sqlDB}
	if err := d.waitReady(ctx, o, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) waitReady(ctx context.Context, o dbOptions, log *zap.Logger) error {
	var err error
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = d.sql.PingContext(pingCtx)
		cancel()
		if err == nil || attempt >= o.attempts {
			break
		}
		log.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", o.retryWait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.retryWait):
		}
	}
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Ping reports whether the pool can reach postgres
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// SQL returns the underlying pool, for instrumentation
func (d *Database) SQL() *sql.DB {
	return d.sql
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sql.Close()
}
