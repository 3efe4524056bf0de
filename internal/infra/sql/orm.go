package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type ORM interface {
	AutoMigrate(dst ...any) error
	Count(count *int64) ORM
	Create(value any) ORM
	Delete(value any, conds ...any) ORM
	Find(dest any, conds ...any) ORM
	First(dest any, conds ...any) ORM
	Limit(limit int) ORM
	Model(value any) ORM
	Offset(offset int) ORM
	Order(value any) ORM
	Save(value any) ORM
	Transaction(fc func(tx ORM) error, opts ...*sql.TxOptions) error
	Where(query any, args ...any) ORM
	WithContext(ctx context.Context) ORM
	WithTimeout(ctx context.Context, timeout time.Duration) ORM

	Ping(ctx context.Context) error
	RowsAffected() int64
	Error() error
}

type DB struct {
	*gorm.DB
	system               string
	autoMigrationEnabled bool
	timeout              time.Duration
}

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicatedKey  = errors.New("duplicated key")
)

func (d DB) Error() error {
	switch {
	case errors.Is(d.DB.Error, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(d.DB.Error, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicatedKey, d.DB.Error)
	case d.DB.Error != nil:
		return fmt.Errorf("database error: %w", d.DB.Error)
	default:
		return nil
	}
}

var _ ORM = (*DB)(nil)

// WithQueryTimeout bounds every statement started through WithContext.
func (d *DB) WithQueryTimeout(timeout time.Duration) *DB {
	d.timeout = timeout
	return d
}

func (d DB) AutoMigrate(dst ...any) error {
	if d.autoMigrationEnabled {
		return d.DB.AutoMigrate(dst...)
	}

	return nil
}

func (d DB) Count(value *int64) ORM {
	d.setSpanAttributes("count")
	d.DB = d.DB.Count(value)
	return &d
}

func (d DB) Create(value any) ORM {
	d.setSpanAttributes("create")
	d.DB = d.DB.Create(value)
	return &d
}

func (d DB) Delete(value any, conds ...any) ORM {
	d.setSpanAttributes("delete")
	d.DB = d.DB.Delete(value, conds...)
	return &d
}

func (d DB) Find(value any, conds ...any) ORM {
	d.setSpanAttributes("find")
	d.DB = d.DB.Find(value, conds...)
	return &d
}

func (d DB) First(value any, conds ...any) ORM {
	d.setSpanAttributes("first")
	d.DB = d.DB.First(value, conds...)
	return &d
}

func (d DB) Limit(value int) ORM {
	d.DB = d.DB.Limit(value)
	return &d
}

func (d DB) Model(value any) ORM {
	d.DB = d.DB.Model(value)
	return &d
}

func (d DB) Offset(value int) ORM {
	d.DB = d.DB.Offset(value)
	return &d
}

func (d DB) Order(value any) ORM {
	d.DB = d.DB.Order(value)
	return &d
}

func (d DB) Save(value any) ORM {
	d.setSpanAttributes("save")
	d.DB = d.DB.Save(value)
	return &d
}

func (d DB) Where(value any, conds ...any) ORM {
	d.DB = d.DB.Where(value, conds...)
	return &d
}

func (d DB) WithContext(value context.Context) ORM {
	if d.timeout > 0 {
		return d.WithTimeout(value, d.timeout)
	}

	d.DB = d.DB.WithContext(value)
	return &d
}

// WithTimeout releases the derived context once it expires or its parent
// is done; gorm gives no hook at statement end.
func (d DB) WithTimeout(ctx context.Context, timeout time.Duration) ORM {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	go func() {
		<-timeoutCtx.Done()
		cancel()
	}()
	d.DB = d.DB.WithContext(timeoutCtx)
	return &d
}

func (d DB) Transaction(f func(ORM) error, opts ...*sql.TxOptions) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		return f(&DB{DB: tx, system: d.system, autoMigrationEnabled: d.autoMigrationEnabled, timeout: d.timeout})
	}, opts...)
}

func (d DB) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("getting %s connection: %w", d.system, err)
	}
	return sqlDB.PingContext(ctx)
}

func (d DB) RowsAffected() int64 {
	return d.DB.RowsAffected
}

func (d DB) setSpanAttributes(operation string) {
	if ctx := d.DB.Statement.Context; ctx != nil {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("span.kind", "client"),
				attribute.String("component", "database"),
				attribute.String("db.system", d.system),
				attribute.String("db.operation", operation),
			)
		}
	}
}
