package usecases_test

import (
	"context"
	"loanportal-server/internal/fieldcatalog/domain"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
)

func definition(id, name string, order int, category string) domain.FieldDefinition {
	return domain.FieldDefinition{
		ID:           shareddomain.ID(id),
		Version:      1,
		Context:      domain.ContextApplication,
		FieldName:    shareddomain.Name(name),
		FieldLabel:   shareddomain.DisplayName(name),
		FieldType:    domain.FieldTypeText,
		Category:     category,
		DisplayOrder: order,
	}
}

// runNow is a scheduler stub that runs each task synchronously.
func runNow(ctx context.Context) func(task func(context.Context) error) <-chan error {
	return func(task func(context.Context) error) <-chan error {
		result := make(chan error, 1)
		result <- task(ctx)
		close(result)
		return result
	}
}
