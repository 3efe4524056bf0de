package persistence

import (
	"context"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/persistence/internal"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/pubsub"
	"loanportal-server/internal/infra/sql"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
	"time"
)

func NewFieldDefinitionRepository(publisherFactory pubsub.PublisherFactory, orm sql.ORM) (*SimpleFieldDefinitionRepository, error) {
	publisher, err := publisherFactory.New(pubsub.Topic(domain.FieldDefinitionEventsTopic), domain.FieldDefinitionEvent{})
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	err = orm.AutoMigrate(&internal.FieldDefinition{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleFieldDefinitionRepository{
		publisher: publisher,
		orm:       orm,
	}, nil
}

var _ usecases.FieldDefinitionRepository = (*SimpleFieldDefinitionRepository)(nil)

type SimpleFieldDefinitionRepository struct {
	publisher pubsub.Publisher
	orm       sql.ORM
}

func (r *SimpleFieldDefinitionRepository) FindAllByContext(ctx context.Context, fieldContext domain.FieldContext) ([]domain.FieldDefinition, error) {
	var entities []internal.FieldDefinition
	err := r.orm.
		WithContext(ctx).
		Where("context = ?", string(fieldContext)).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error()
	if err != nil {
		return nil, fmt.Errorf("finding field definitions of %s: %w", fieldContext, err)
	}

	result := make([]domain.FieldDefinition, len(entities))
	for i, entity := range entities {
		result[i] = entity.ToDomain()
	}
	return result, nil
}

func (r *SimpleFieldDefinitionRepository) GetByID(ctx context.Context, id shareddomain.ID) (domain.FieldDefinition, error) {
	entity, err := r.first(r.orm.WithContext(ctx), id)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	return entity.ToDomain(), nil
}

func (r *SimpleFieldDefinitionRepository) Create(ctx context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error) {
	if def.ID.IsZero() {
		def.ID = shareddomain.NewID()
	}
	if def.Version < shareddomain.InitialVersion {
		def.Version = shareddomain.InitialVersion
	}

	entity := internal.FromFieldDefinition(def)
	now := time.Now().UTC()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	if err := r.orm.WithContext(ctx).Create(&entity).Error(); err != nil {
		return domain.FieldDefinition{}, fmt.Errorf("creating field definition: %w", err)
	}

	created := entity.ToDomain()
	r.publish(ctx, domain.EventFieldCreated, created)
	return created, nil
}

// Update applies the patch on the stored row; concurrent writers are not
// detected and the last one wins.
func (r *SimpleFieldDefinitionRepository) Update(ctx context.Context, id shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error) {
	var updated internal.FieldDefinition
	err := r.orm.Transaction(func(tx sql.ORM) error {
		current, err := r.first(tx.WithContext(ctx), id)
		if err != nil {
			return err
		}

		updated = internal.FromFieldDefinition(current.ToDomain().Apply(patch))
		updated.CreatedAt = current.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.WithContext(ctx).Save(&updated).Error()
	})
	if err != nil {
		if errors.Is(err, usecases.ErrFieldDefinitionNotFound) {
			return domain.FieldDefinition{}, err
		}
		return domain.FieldDefinition{}, fmt.Errorf("updating field definition: %w", err)
	}

	def := updated.ToDomain()
	r.publish(ctx, domain.EventFieldUpdated, def)
	return def, nil
}

func (r *SimpleFieldDefinitionRepository) Delete(ctx context.Context, id shareddomain.ID) error {
	current, err := r.first(r.orm.WithContext(ctx), id)
	if err != nil {
		return err
	}

	result := r.orm.WithContext(ctx).Delete(&internal.FieldDefinition{}, "id = ?", id.String())
	if err := result.Error(); err != nil {
		return fmt.Errorf("deleting field definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return usecases.ErrFieldDefinitionNotFound
	}

	r.publish(ctx, domain.EventFieldDeleted, current.ToDomain())
	return nil
}

func (r *SimpleFieldDefinitionRepository) first(orm sql.ORM, id shareddomain.ID) (internal.FieldDefinition, error) {
	var entity internal.FieldDefinition
	err := orm.Where("id = ?", id.String()).First(&entity).Error()
	if errors.Is(err, sql.ErrRecordNotFound) {
		return internal.FieldDefinition{}, usecases.ErrFieldDefinitionNotFound
	}
	if err != nil {
		return internal.FieldDefinition{}, fmt.Errorf("getting field definition: %w", err)
	}
	return entity, nil
}

// publish announces a committed write. A lost event only delays cache
// invalidation on other instances, so it does not fail the write.
func (r *SimpleFieldDefinitionRepository) publish(ctx context.Context, eventType domain.EventType, def domain.FieldDefinition) {
	event := domain.NewFieldDefinitionEvent(eventType, def)
	headers := pubsub.ExtractTraceFromContext(ctx)
	event.TraceID = headers.TraceID
	event.SpanID = headers.SpanID
	event.TraceFlags = headers.TraceFlags

	if err := r.publisher.Publish(ctx, pubsub.Key(def.Context), event); err != nil {
		slog.Error("publishing field definition event",
			slog.String("event", string(eventType)),
			slog.String("field_definition_id", def.ID.String()),
			slog.String("error", err.Error()))
	}
}
