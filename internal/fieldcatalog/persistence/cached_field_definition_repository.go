package persistence

import (
	"context"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/persistence/internal"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/cache"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	DefaultCatalogTTL = 5 * time.Minute
	catalogKeyPrefix  = "field_catalog:"
)

func NewCachedFieldDefinitionRepository(next usecases.FieldDefinitionRepository, cache cache.Cache, ttl time.Duration) *CachedFieldDefinitionRepository {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CachedFieldDefinitionRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

var (
	_ usecases.FieldDefinitionRepository = (*CachedFieldDefinitionRepository)(nil)
	_ usecases.CatalogCache              = (*CachedFieldDefinitionRepository)(nil)
)

// CachedFieldDefinitionRepository keeps the catalog of each context as a
// msgpack snapshot. Local writes drop the snapshot of their context; writes
// on other instances arrive as events through Invalidate.
type CachedFieldDefinitionRepository struct {
	next  usecases.FieldDefinitionRepository
	cache cache.Cache
	ttl   time.Duration
}

func catalogKey(fieldContext domain.FieldContext) string {
	return catalogKeyPrefix + string(fieldContext)
}

func (r *CachedFieldDefinitionRepository) FindAllByContext(ctx context.Context, fieldContext domain.FieldContext) ([]domain.FieldDefinition, error) {
	value, err := r.cache.GetOrSet(ctx, catalogKey(fieldContext), r.ttl, func() (any, error) {
		defs, err := r.next.FindAllByContext(ctx, fieldContext)
		if err != nil {
			return nil, err
		}
		return encodeSnapshot(defs)
	})
	if err != nil {
		return nil, err
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("cached %s catalog has type %T", fieldContext, value)
	}

	defs, err := decodeSnapshot(data)
	if err != nil {
		slog.Warn("dropping unreadable catalog snapshot",
			slog.String("context", string(fieldContext)),
			slog.String("error", err.Error()))
		r.cache.Delete(ctx, catalogKey(fieldContext))
		return r.next.FindAllByContext(ctx, fieldContext)
	}
	return defs, nil
}

func (r *CachedFieldDefinitionRepository) GetByID(ctx context.Context, id shareddomain.ID) (domain.FieldDefinition, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedFieldDefinitionRepository) Create(ctx context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error) {
	created, err := r.next.Create(ctx, def)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	_ = r.Invalidate(ctx, created.Context)
	return created, nil
}

func (r *CachedFieldDefinitionRepository) Update(ctx context.Context, id shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error) {
	updated, err := r.next.Update(ctx, id, patch)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	_ = r.Invalidate(ctx, updated.Context)
	return updated, nil
}

func (r *CachedFieldDefinitionRepository) Delete(ctx context.Context, id shareddomain.ID) error {
	current, err := r.next.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.Invalidate(ctx, current.Context)
	return nil
}

func (r *CachedFieldDefinitionRepository) Invalidate(ctx context.Context, fieldContext domain.FieldContext) error {
	if !fieldContext.IsValid() {
		return fmt.Errorf("%w %q", domain.ErrUnknownFieldContext, fieldContext)
	}
	r.cache.Delete(ctx, catalogKey(fieldContext))
	return nil
}

func encodeSnapshot(defs []domain.FieldDefinition) ([]byte, error) {
	entities := make([]internal.FieldDefinition, len(defs))
	for i, def := range defs {
		entities[i] = internal.FromFieldDefinition(def)
	}
	data, err := msgpack.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("encoding catalog snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) ([]domain.FieldDefinition, error) {
	var entities []internal.FieldDefinition
	if err := msgpack.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("decoding catalog snapshot: %w", err)
	}
	defs := make([]domain.FieldDefinition, len(entities))
	for i, entity := range entities {
		defs[i] = entity.ToDomain()
	}
	return defs, nil
}
