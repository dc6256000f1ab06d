package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// ConnectConfig holds connection and pool settings for PostgreSQL
type ConnectConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryCount      int
}

// DSN returns the lib/pq connection string
func (c ConnectConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Connect opens a PostgreSQL connection pool, retrying with fibonacci
// backoff until the database answers a ping or the retry budget runs
// out.
func Connect(ctx context.Context, cfg ConnectConfig, logger ectologger.Logger) (DB, error) {
	attempts := cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	a, b := 1, 1
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxIdleConns)
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
			return NewDatabaseInstance(db, logger), nil
		}

		lastErr = err
		logger.WithError(err).Warnf("Database connection attempt %d/%d failed", attempt, attempts)

		if attempt == attempts {
			break
		}

		wait := time.Duration(a) * time.Second
		a, b = b, a+b

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, errors.Wrap(lastErr, "failed to connect to database")
}

// RunMigrations applies pending schema migrations using the given
// connection.
func RunMigrations(db DB, databaseName, folderPath string, logger ectologger.Logger) error {
	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to create migration driver")
	}

	service := NewMigrationService(logger, &MigrationConfig{
		MigrationFolderPath: folderPath,
	})

	return service.Migrate(databaseName, driver)
}
