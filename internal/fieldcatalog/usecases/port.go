package usecases

import (
	"context"
	"loanportal-server/internal/fieldcatalog/domain"
)

//go:generate mockgen -source=port.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/port_mock.go -package=usecases -mock_names=UpdateScheduler=MockUpdateScheduler,CatalogCache=MockCatalogCache,WriteAuthorizer=MockWriteAuthorizer

// UpdateScheduler runs store writes one at a time. The returned channel
// yields the task result once and is then closed.
type UpdateScheduler interface {
	Submit(task func(ctx context.Context) error) <-chan error
}

// CatalogCache drops cached catalog snapshots.
type CatalogCache interface {
	Invalidate(ctx context.Context, fieldContext domain.FieldContext) error
}

// WriteAuthorizer decides whether a role may change the catalog.
type WriteAuthorizer interface {
	CanWrite(role string, fieldContext domain.FieldContext) (bool, error)
}
