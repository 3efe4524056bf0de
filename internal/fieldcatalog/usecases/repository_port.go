package usecases

import (
	"context"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
)

//go:generate mockgen -source=repository_port.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/repository_port_mock.go -package=usecases -mock_names=FieldDefinitionRepository=MockFieldDefinitionRepository

var (
	ErrFieldDefinitionNotFound = errors.New("field definition not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrInvalidReorder          = errors.New("invalid reorder request")
	// ErrCatalogUnavailable means the store could not be read. It is never
	// reported as an empty catalog.
	ErrCatalogUnavailable = errors.New("field catalog unavailable")
)

// Pagination encapsulates pagination parameters for list queries
type Pagination struct {
	Limit  int
	Offset int
}

type FieldDefinitionRepository interface {
	// FindAllByContext returns the catalog of a context in insertion order.
	FindAllByContext(ctx context.Context, fieldContext domain.FieldContext) ([]domain.FieldDefinition, error)
	GetByID(ctx context.Context, id shareddomain.ID) (domain.FieldDefinition, error)
	Create(ctx context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error)
	Update(ctx context.Context, id shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error)
	Delete(ctx context.Context, id shareddomain.ID) error
}
