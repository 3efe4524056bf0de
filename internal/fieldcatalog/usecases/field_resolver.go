package usecases

import (
	"context"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"log/slog"
	"slices"
)

//go:generate mockgen -source=field_resolver.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/field_resolver_mock.go -package=usecases -mock_names=FieldResolver=MockFieldResolver

type CategoryGroup struct {
	Key          string
	Category     string
	DisplayName  string
	IsRepeatable bool
	Fields       []domain.FieldDefinition
}

// Resolution is the effective field list of a context for one role. Fields
// is Categories flattened in order.
type Resolution struct {
	Fields     []domain.FieldDefinition
	Categories []CategoryGroup
}

type FieldResolver interface {
	ResolveFields(ctx context.Context, fieldContext domain.FieldContext, role string) (Resolution, error)
}

func NewFieldResolver(repository FieldDefinitionRepository) *SimpleFieldResolver {
	return &SimpleFieldResolver{
		repository: repository,
	}
}

var _ FieldResolver = &SimpleFieldResolver{}

type SimpleFieldResolver struct {
	repository FieldDefinitionRepository
}

func (r *SimpleFieldResolver) ResolveFields(ctx context.Context, fieldContext domain.FieldContext, role string) (Resolution, error) {
	defs, err := r.repository.FindAllByContext(ctx, fieldContext)
	if err != nil {
		slog.Error("loading field catalog",
			slog.String("context", string(fieldContext)),
			slog.String("error", err.Error()))
		return Resolution{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	visible := domain.FilterVisible(defs, role)
	groups := groupByCategory(visible)

	fields := make([]domain.FieldDefinition, 0, len(visible))
	for _, group := range groups {
		fields = append(fields, group.Fields...)
	}

	return Resolution{Fields: fields, Categories: groups}, nil
}

// groupByCategory groups definitions in order of first appearance, sorts
// each group by display order and then orders the groups by their first
// field. Both sorts are stable so ties keep catalog order.
func groupByCategory(defs []domain.FieldDefinition) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)

	for _, def := range defs {
		key := def.CategoryKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{
				Key:         key,
				Category:    def.Category,
				DisplayName: def.CategoryDisplayName,
			})
		}
		groups[i].Fields = append(groups[i].Fields, def)
		groups[i].IsRepeatable = groups[i].IsRepeatable || def.IsRepeatableCategory
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Fields, func(a, b domain.FieldDefinition) int {
			return a.DisplayOrder - b.DisplayOrder
		})
	}

	slices.SortStableFunc(groups, func(a, b CategoryGroup) int {
		return a.Fields[0].DisplayOrder - b.Fields[0].DisplayOrder
	})

	return groups
}
