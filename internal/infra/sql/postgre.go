package sql

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxRetries    = 10
	retryInterval = 5 * time.Second
)

func NewPostgreORM(dsn string) (*DB, error) {
	if pass, ok := os.LookupEnv("LOANPORTAL_SERVER_POSTGRES_PASSWORD"); ok {
		dsn = fmt.Sprintf("%s password=%s", dsn, pass)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return &DB{
		DB:                   gormDB,
		system:               "postgresql",
		autoMigrationEnabled: true,
	}, nil
}

var _ Database = (*PostgreDatabase)(nil)

// PostgreDatabase is a raw pgx pool next to the ORM. Readiness checks use
// it so a saturated gorm pool does not mark the instance unready.
type PostgreDatabase struct {
	url  string
	conn *pgxpool.Pool
}

var (
	postgreInstance *PostgreDatabase
	postgreOnce     sync.Once
)

func NewPostgreDatabase(url string) *PostgreDatabase {
	postgreOnce.Do(func() {
		postgreInstance = &PostgreDatabase{url: url}
	})
	return postgreInstance
}

func (d *PostgreDatabase) Open(ctx context.Context) error {
	for try := 1; try <= maxRetries; try++ {
		conn, err := pgxpool.New(ctx, d.url)
		if err == nil {
			if err = conn.Ping(ctx); err == nil {
				d.conn = conn
				return nil
			}
			conn.Close()
		}

		slog.Warn("postgres not ready",
			slog.Int("try", try),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return fmt.Errorf("impossible to connect to database after %d retries", maxRetries)
}

func (d *PostgreDatabase) Ping(ctx context.Context) error {
	if d.conn == nil {
		return ErrNotConnected
	}
	return d.conn.Ping(ctx)
}

func (d *PostgreDatabase) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
