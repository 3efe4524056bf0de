package usecases

import (
	"context"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
)

//go:generate mockgen -source=reorder_service.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/reorder_service_mock.go -package=usecases -mock_names=ReorderService=MockReorderService

// ReorderOutcome lists the definitions whose display order was written.
// Definitions that already had the requested order are not written.
type ReorderOutcome struct {
	Requested int
	Updated   []shareddomain.ID
}

type ReorderService interface {
	ReorderFields(ctx context.Context, fieldContext domain.FieldContext, orderedIDs []shareddomain.ID) (ReorderOutcome, error)
	ReorderCategories(ctx context.Context, fieldContext domain.FieldContext, categoryKeys []string) (ReorderOutcome, error)
}

func NewReorderService(repository FieldDefinitionRepository, scheduler UpdateScheduler) *SimpleReorderService {
	return &SimpleReorderService{
		repository: repository,
		scheduler:  scheduler,
	}
}

var _ ReorderService = &SimpleReorderService{}

type SimpleReorderService struct {
	repository FieldDefinitionRepository
	scheduler  UpdateScheduler
}

type orderChange struct {
	id    shareddomain.ID
	order int
}

// ReorderFields gives each listed definition its position in orderedIDs as
// display order. Definitions not listed keep theirs.
func (s *SimpleReorderService) ReorderFields(ctx context.Context, fieldContext domain.FieldContext, orderedIDs []shareddomain.ID) (ReorderOutcome, error) {
	catalog, err := s.loadCatalog(ctx, fieldContext)
	if err != nil {
		return ReorderOutcome{}, err
	}

	byID := make(map[shareddomain.ID]domain.FieldDefinition, len(catalog))
	for _, def := range catalog {
		byID[def.ID] = def
	}

	seen := make(map[shareddomain.ID]bool, len(orderedIDs))
	changes := make([]orderChange, 0)
	for position, id := range orderedIDs {
		def, ok := byID[id]
		if !ok {
			return ReorderOutcome{}, fmt.Errorf("%w: %s in %s context", ErrFieldDefinitionNotFound, id, fieldContext)
		}
		if seen[id] {
			return ReorderOutcome{}, fmt.Errorf("%w: %s listed twice", ErrInvalidReorder, id)
		}
		seen[id] = true
		if def.DisplayOrder != position {
			changes = append(changes, orderChange{id: id, order: position})
		}
	}

	return s.apply(ctx, fieldContext, len(orderedIDs), changes)
}

// ReorderCategories moves whole categories. Listed categories come first in
// the given order, the rest follow in their current order; fields keep their
// order inside a category and the whole context is renumbered from zero.
func (s *SimpleReorderService) ReorderCategories(ctx context.Context, fieldContext domain.FieldContext, categoryKeys []string) (ReorderOutcome, error) {
	catalog, err := s.loadCatalog(ctx, fieldContext)
	if err != nil {
		return ReorderOutcome{}, err
	}

	groups := groupByCategory(catalog)
	byKey := make(map[string]CategoryGroup, len(groups))
	for _, group := range groups {
		byKey[group.Key] = group
	}

	ordered := make([]CategoryGroup, 0, len(groups))
	placed := make(map[string]bool, len(categoryKeys))
	for _, key := range categoryKeys {
		group, ok := byKey[key]
		if !ok {
			return ReorderOutcome{}, fmt.Errorf("%w: %q in %s context", ErrCategoryNotFound, key, fieldContext)
		}
		if placed[key] {
			return ReorderOutcome{}, fmt.Errorf("%w: category %q listed twice", ErrInvalidReorder, key)
		}
		placed[key] = true
		ordered = append(ordered, group)
	}
	for _, group := range groups {
		if !placed[group.Key] {
			ordered = append(ordered, group)
		}
	}

	changes := make([]orderChange, 0)
	position := 0
	for _, group := range ordered {
		for _, def := range group.Fields {
			if def.DisplayOrder != position {
				changes = append(changes, orderChange{id: def.ID, order: position})
			}
			position++
		}
	}

	return s.apply(ctx, fieldContext, len(catalog), changes)
}

// apply submits one update per change to the scheduler and waits for all of
// them. Failed updates are not rolled back.
func (s *SimpleReorderService) apply(ctx context.Context, fieldContext domain.FieldContext, requested int, changes []orderChange) (ReorderOutcome, error) {
	outcome := ReorderOutcome{Requested: requested, Updated: make([]shareddomain.ID, 0, len(changes))}
	if len(changes) == 0 {
		return outcome, nil
	}

	results := make([]<-chan error, len(changes))
	for i, change := range changes {
		order := change.order
		id := change.id
		results[i] = s.scheduler.Submit(func(taskCtx context.Context) error {
			_, err := s.repository.Update(taskCtx, id, domain.FieldPatch{DisplayOrder: &order})
			return err
		})
	}

	failure := &domain.PartialReorderFailure{Causes: make(map[string]error)}
	for i, result := range results {
		select {
		case err := <-result:
			if err != nil {
				id := changes[i].id.String()
				failure.FailedIDs = append(failure.FailedIDs, id)
				failure.Causes[id] = err
				slog.Error("updating display order",
					slog.String("field_definition_id", id),
					slog.Int("display_order", changes[i].order),
					slog.String("error", err.Error()))
				continue
			}
			outcome.Updated = append(outcome.Updated, changes[i].id)
		case <-ctx.Done():
			slog.Warn("reorder caller went away, queued updates keep running",
				slog.String("context", string(fieldContext)),
				slog.Int("pending", len(changes)-i))
			return outcome, ctx.Err()
		}
	}

	if len(failure.FailedIDs) > 0 {
		failure.Applied = len(outcome.Updated)
		reorderFailures.WithLabelValues(string(fieldContext)).Add(float64(len(failure.FailedIDs)))
		return outcome, failure
	}

	slog.Info("field catalog reordered",
		slog.String("context", string(fieldContext)),
		slog.Int("updated", len(outcome.Updated)),
		slog.Int("requested", requested))

	return outcome, nil
}

func (s *SimpleReorderService) loadCatalog(ctx context.Context, fieldContext domain.FieldContext) ([]domain.FieldDefinition, error) {
	if !fieldContext.IsValid() {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownFieldContext, fieldContext)
	}
	catalog, err := s.repository.FindAllByContext(ctx, fieldContext)
	if err != nil {
		slog.Error("loading field catalog for reorder",
			slog.String("context", string(fieldContext)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return catalog, nil
}
