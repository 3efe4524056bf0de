package usecases

import (
	"context"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/formula"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"log/slog"
	"slices"
)

//go:generate mockgen -source=field_definition_service.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/field_definition_service_mock.go -package=usecases -mock_names=FieldDefinitionService=MockFieldDefinitionService

type FieldDefinitionService interface {
	CreateFieldDefinition(ctx context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error)
	GetFieldDefinition(ctx context.Context, id shareddomain.ID) (domain.FieldDefinition, error)
	ListFieldDefinitions(ctx context.Context, fieldContext domain.FieldContext, pagination Pagination) ([]domain.FieldDefinition, int, error)
	UpdateFieldDefinition(ctx context.Context, id shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error)
	DeleteFieldDefinition(ctx context.Context, id shareddomain.ID) error
}

func NewFieldDefinitionService(repository FieldDefinitionRepository) *SimpleFieldDefinitionService {
	return &SimpleFieldDefinitionService{
		repository: repository,
	}
}

var _ FieldDefinitionService = &SimpleFieldDefinitionService{}

type SimpleFieldDefinitionService struct {
	repository FieldDefinitionRepository
}

// CreateFieldDefinition appends the definition at the end of its context.
func (s *SimpleFieldDefinitionService) CreateFieldDefinition(ctx context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error) {
	var catalog []domain.FieldDefinition
	if def.Context.IsValid() {
		var err error
		if catalog, err = s.loadCatalog(ctx, def.Context); err != nil {
			return domain.FieldDefinition{}, err
		}
	}

	def.VisibleToRoles = domain.NormalizeVisibleRoles(def.VisibleToRoles)
	def.DisplayOrder = len(catalog)

	if err := validateInCatalog(def, catalog); err != nil {
		slog.Warn("rejecting field definition",
			slog.String("field_name", def.FieldName.String()),
			slog.String("error", err.Error()))
		return domain.FieldDefinition{}, err
	}

	created, err := s.repository.Create(ctx, def)
	if err != nil {
		slog.Error("creating field definition", slog.String("error", err.Error()))
		return domain.FieldDefinition{}, fmt.Errorf("creating field definition: %w", err)
	}

	slog.Info("field definition created",
		slog.String("id", created.ID.String()),
		slog.String("context", string(created.Context)),
		slog.String("field_name", created.FieldName.String()))

	return created.Normalize(), nil
}

func (s *SimpleFieldDefinitionService) GetFieldDefinition(ctx context.Context, id shareddomain.ID) (domain.FieldDefinition, error) {
	def, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFieldDefinitionNotFound) {
			return domain.FieldDefinition{}, ErrFieldDefinitionNotFound
		}
		slog.Error("getting field definition", slog.String("error", err.Error()))
		return domain.FieldDefinition{}, fmt.Errorf("getting field definition: %w", err)
	}

	return def.Normalize(), nil
}

func (s *SimpleFieldDefinitionService) ListFieldDefinitions(ctx context.Context, fieldContext domain.FieldContext, pagination Pagination) ([]domain.FieldDefinition, int, error) {
	catalog, err := s.loadCatalog(ctx, fieldContext)
	if err != nil {
		return nil, 0, err
	}

	total := len(catalog)
	start := min(max(pagination.Offset, 0), total)
	end := total
	if pagination.Limit > 0 {
		end = min(start+pagination.Limit, total)
	}

	return domain.NormalizeAll(catalog[start:end]), total, nil
}

func (s *SimpleFieldDefinitionService) UpdateFieldDefinition(ctx context.Context, id shareddomain.ID, patch domain.FieldPatch) (domain.FieldDefinition, error) {
	existing, err := s.GetFieldDefinition(ctx, id)
	if err != nil {
		return domain.FieldDefinition{}, err
	}

	if patch.IsEmpty() {
		return existing, nil
	}

	if patch.VisibleToRoles != nil {
		roles := domain.NormalizeVisibleRoles(*patch.VisibleToRoles)
		patch.VisibleToRoles = &roles
	}

	catalog, err := s.loadCatalog(ctx, existing.Context)
	if err != nil {
		return domain.FieldDefinition{}, err
	}

	if err := validateInCatalog(existing.Apply(patch), catalog); err != nil {
		slog.Warn("rejecting field definition update",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		return domain.FieldDefinition{}, err
	}

	updated, err := s.repository.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrFieldDefinitionNotFound) {
			return domain.FieldDefinition{}, ErrFieldDefinitionNotFound
		}
		slog.Error("updating field definition", slog.String("error", err.Error()))
		return domain.FieldDefinition{}, fmt.Errorf("updating field definition: %w", err)
	}

	slog.Info("field definition updated",
		slog.String("id", updated.ID.String()),
		slog.Int("version", int(updated.Version)))

	return updated.Normalize(), nil
}

func (s *SimpleFieldDefinitionService) DeleteFieldDefinition(ctx context.Context, id shareddomain.ID) error {
	if _, err := s.GetFieldDefinition(ctx, id); err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrFieldDefinitionNotFound) {
			return ErrFieldDefinitionNotFound
		}
		slog.Error("deleting field definition", slog.String("error", err.Error()))
		return fmt.Errorf("deleting field definition: %w", err)
	}

	slog.Info("field definition deleted", slog.String("id", id.String()))
	return nil
}

func (s *SimpleFieldDefinitionService) loadCatalog(ctx context.Context, fieldContext domain.FieldContext) ([]domain.FieldDefinition, error) {
	if !fieldContext.IsValid() {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownFieldContext, fieldContext)
	}

	catalog, err := s.repository.FindAllByContext(ctx, fieldContext)
	if err != nil {
		slog.Error("loading field catalog",
			slog.String("context", string(fieldContext)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return catalog, nil
}

// validateInCatalog runs the definition's own invariants plus the ones that
// need the rest of its context: unique field_name and parsable formulas.
func validateInCatalog(def domain.FieldDefinition, catalog []domain.FieldDefinition) error {
	verr := def.Validate()

	name := def.FieldName.String()
	for _, other := range catalog {
		if other.ID != def.ID && other.FieldName == def.FieldName && name != "" {
			verr.Add("field_name", "%q already exists in the %s context", name, def.Context)
			break
		}
	}

	if vc := def.ValueConditional; vc != nil && vc.Type == domain.ValueConditionalFormula && vc.Formula != "" {
		expr, err := formula.Parse(vc.Formula)
		if err != nil {
			verr.Add("value_conditional.formula", "%s", err.Error())
		} else if slices.Contains(expr.References(), name) {
			verr.Add("value_conditional.formula", "must not reference the field itself")
		}
	}

	return verr.OrNil()
}
