package usecases

import (
	"context"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedSeedVersion = errors.New("catalog seed: unsupported version")

type CatalogSeed struct {
	Version  int                         `yaml:"version"`
	Contexts map[string][]SeedDefinition `yaml:"contexts"`
}

type SeedDefinition struct {
	FieldName            string                  `yaml:"field_name"`
	FieldLabel           string                  `yaml:"field_label"`
	FieldType            string                  `yaml:"field_type"`
	Category             string                  `yaml:"category"`
	CategoryDisplayName  string                  `yaml:"category_display_name"`
	IsRepeatableCategory bool                    `yaml:"is_repeatable_category"`
	Section              string                  `yaml:"section"`
	Required             bool                    `yaml:"required"`
	ReadOnly             bool                    `yaml:"read_only"`
	Options              []string                `yaml:"options"`
	VisibleToRoles       []string                `yaml:"visible_to_roles"`
	DisplayConditional   *SeedDisplayConditional `yaml:"display_conditional"`
	ValueConditional     *SeedValueConditional   `yaml:"value_conditional"`
}

type SeedDisplayConditional struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
}

type SeedValueConditional struct {
	Type        string     `yaml:"type"`
	Formula     string     `yaml:"formula"`
	SourceField string     `yaml:"source_field"`
	Rules       []SeedRule `yaml:"rules"`
}

type SeedRule struct {
	ConditionField    string `yaml:"condition_field"`
	ConditionOperator string `yaml:"condition_operator"`
	ConditionValue    any    `yaml:"condition_value"`
	ResultValue       any    `yaml:"result_value"`
}

func ParseCatalogSeedYAML(b []byte) (CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return CatalogSeed{}, fmt.Errorf("catalog seed: %w", err)
	}
	if seed.Version != 1 {
		return CatalogSeed{}, fmt.Errorf("%w %d", ErrUnsupportedSeedVersion, seed.Version)
	}
	for name := range seed.Contexts {
		if _, err := domain.ParseFieldContext(name); err != nil {
			return CatalogSeed{}, fmt.Errorf("catalog seed: %w %q", domain.ErrUnknownFieldContext, name)
		}
	}
	return seed, nil
}

func LoadCatalogSeed(path string) (CatalogSeed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return CatalogSeed{}, err
	}
	return ParseCatalogSeedYAML(b)
}

func (d SeedDefinition) toFieldDefinition(fieldContext domain.FieldContext) (domain.FieldDefinition, error) {
	fieldType := domain.FieldType(d.FieldType)
	if fieldType == "" {
		fieldType = domain.FieldTypeText
	}

	builder := domain.NewFieldDefinitionBuilder().
		WithContext(fieldContext).
		WithFieldName(d.FieldName).
		WithFieldLabel(d.FieldLabel).
		WithFieldType(fieldType).
		WithCategory(d.Category, d.CategoryDisplayName).
		WithRepeatableCategory(d.IsRepeatableCategory).
		WithSection(d.Section).
		WithRequired(d.Required).
		WithReadOnly(d.ReadOnly)

	if d.Options != nil {
		builder = builder.WithOptions(d.Options)
	}
	if d.VisibleToRoles != nil {
		builder = builder.WithVisibleToRoles(d.VisibleToRoles)
	}
	if dc := d.DisplayConditional; dc != nil {
		builder = builder.WithDisplayConditional(domain.DisplayConditional{
			Field:    dc.Field,
			Operator: domain.Operator(dc.Operator),
			Value:    domain.FromAny(dc.Value),
		})
	}
	if vc := d.ValueConditional; vc != nil {
		rules := make([]domain.ConditionalRule, 0, len(vc.Rules))
		for _, rule := range vc.Rules {
			rules = append(rules, domain.ConditionalRule{
				ConditionField:    rule.ConditionField,
				ConditionOperator: domain.Operator(rule.ConditionOperator),
				ConditionValue:    domain.FromAny(rule.ConditionValue),
				ResultValue:       domain.FromAny(rule.ResultValue),
			})
		}
		builder = builder.WithValueConditional(domain.ValueConditional{
			Type:        domain.ValueConditionalType(vc.Type),
			Formula:     vc.Formula,
			SourceField: vc.SourceField,
			Rules:       rules,
		})
	}

	return builder.Build()
}

func NewCatalogSeeder(service FieldDefinitionService) *CatalogSeeder {
	return &CatalogSeeder{service: service}
}

// CatalogSeeder fills contexts that have no definitions yet. A context
// holding at least one definition is left alone.
type CatalogSeeder struct {
	service FieldDefinitionService
}

func (s *CatalogSeeder) Seed(ctx context.Context, seed CatalogSeed) (int, error) {
	created := 0
	for _, fieldContext := range []domain.FieldContext{domain.ContextApplication, domain.ContextLoan} {
		defs, ok := seed.Contexts[string(fieldContext)]
		if !ok || len(defs) == 0 {
			continue
		}

		_, total, err := s.service.ListFieldDefinitions(ctx, fieldContext, Pagination{Limit: 1})
		if err != nil {
			return created, err
		}
		if total > 0 {
			slog.Debug("field catalog already seeded",
				slog.String("context", string(fieldContext)),
				slog.Int("definitions", total))
			continue
		}

		for _, seedDef := range defs {
			def, err := seedDef.toFieldDefinition(fieldContext)
			if err != nil {
				return created, fmt.Errorf("seeding %s.%s: %w", fieldContext, seedDef.FieldName, err)
			}
			if _, err := s.service.CreateFieldDefinition(ctx, def); err != nil {
				return created, fmt.Errorf("seeding %s.%s: %w", fieldContext, seedDef.FieldName, err)
			}
			created++
		}

		slog.Info("field catalog seeded",
			slog.String("context", string(fieldContext)),
			slog.Int("definitions", len(defs)))
	}
	return created, nil
}
