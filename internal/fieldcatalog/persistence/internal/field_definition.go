package internal

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/infra/utils"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type FieldDefinition struct {
	ID                   string                     `json:"id" gorm:"primaryKey"`
	Version              int                        `json:"version"`
	Context              string                     `json:"context" gorm:"index;not null"`
	FieldName            string                     `json:"field_name" gorm:"not null"`
	FieldLabel           string                     `json:"field_label"`
	FieldType            string                     `json:"field_type"`
	Category             string                     `json:"category"`
	CategoryDisplayName  string                     `json:"category_display_name"`
	IsRepeatableCategory bool                       `json:"is_repeatable_category"`
	Section              string                     `json:"section"`
	Required             bool                       `json:"required"`
	ReadOnly             bool                       `json:"read_only"`
	Options              Strings                    `json:"options"`
	DisplayOrder         int                        `json:"display_order"`
	DisplayConditional   NullableDisplayConditional `json:"display_conditional"`
	ValueConditional     NullableValueConditional   `json:"value_conditional"`
	VisibleToRoles       Strings                    `json:"visible_to_roles"`
	CreatedAt            time.Time                  `json:"created_at" gorm:"index"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

func (FieldDefinition) TableName() string {
	return "field_definitions"
}

// jsonColumn stores a value as jsonb on PostgreSQL and as text elsewhere.
func jsonColumn(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

type Strings []string

func (Strings) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumn(db)
}

func (s Strings) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *Strings) Scan(src any) error {
	data, ok, err := columnBytes(src)
	if err != nil || !ok {
		*s = Strings{}
		return err
	}
	return json.Unmarshal(data, s)
}

// Condition values are kept as plain JSON scalars so rows and cached
// snapshots decode without the domain value type.
type DisplayConditional struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type NullableDisplayConditional struct {
	DisplayConditional
	Valid bool
}

func (NullableDisplayConditional) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumn(db)
}

func (n NullableDisplayConditional) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	data, err := json.Marshal(n.DisplayConditional)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (n *NullableDisplayConditional) Scan(src any) error {
	data, ok, err := columnBytes(src)
	if err != nil || !ok {
		*n = NullableDisplayConditional{}
		return err
	}
	n.Valid = true
	return json.Unmarshal(data, &n.DisplayConditional)
}

type ConditionalRule struct {
	ConditionField    string `json:"condition_field"`
	ConditionOperator string `json:"condition_operator"`
	ConditionValue    any    `json:"condition_value"`
	ResultValue       any    `json:"result_value"`
}

type ValueConditional struct {
	Type        string            `json:"type"`
	Formula     string            `json:"formula,omitempty"`
	SourceField string            `json:"source_field,omitempty"`
	Rules       []ConditionalRule `json:"rules,omitempty"`
}

type NullableValueConditional struct {
	ValueConditional
	Valid bool
}

func (NullableValueConditional) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumn(db)
}

func (n NullableValueConditional) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	data, err := json.Marshal(n.ValueConditional)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (n *NullableValueConditional) Scan(src any) error {
	data, ok, err := columnBytes(src)
	if err != nil || !ok {
		*n = NullableValueConditional{}
		return err
	}
	n.Valid = true
	return json.Unmarshal(data, &n.ValueConditional)
}

func columnBytes(src any) ([]byte, bool, error) {
	switch val := src.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(val), true, nil
	case []byte:
		return val, true, nil
	default:
		return nil, false, errors.New("invalid type for json column")
	}
}

func (e FieldDefinition) ToDomain() domain.FieldDefinition {
	def := domain.FieldDefinition{
		ID:                   shareddomain.ID(e.ID),
		Version:              shareddomain.Version(e.Version),
		Context:              domain.FieldContext(e.Context),
		FieldName:            shareddomain.Name(e.FieldName),
		FieldLabel:           shareddomain.DisplayName(e.FieldLabel),
		FieldType:            domain.FieldType(e.FieldType),
		Category:             e.Category,
		CategoryDisplayName:  e.CategoryDisplayName,
		IsRepeatableCategory: e.IsRepeatableCategory,
		Section:              e.Section,
		Required:             e.Required,
		ReadOnly:             e.ReadOnly,
		Options:              append([]string{}, e.Options...),
		DisplayOrder:         e.DisplayOrder,
		VisibleToRoles:       append([]string{}, e.VisibleToRoles...),
		CreatedAt:            utils.Time{Time: e.CreatedAt},
		UpdatedAt:            utils.Time{Time: e.UpdatedAt},
	}

	if e.DisplayConditional.Valid {
		dc := e.DisplayConditional.DisplayConditional
		def.DisplayConditional = &domain.DisplayConditional{
			Field:    dc.Field,
			Operator: domain.Operator(dc.Operator),
			Value:    domain.FromAny(dc.Value),
		}
	}

	if e.ValueConditional.Valid {
		vc := e.ValueConditional.ValueConditional
		rules := make([]domain.ConditionalRule, 0, len(vc.Rules))
		for _, rule := range vc.Rules {
			rules = append(rules, domain.ConditionalRule{
				ConditionField:    rule.ConditionField,
				ConditionOperator: domain.Operator(rule.ConditionOperator),
				ConditionValue:    domain.FromAny(rule.ConditionValue),
				ResultValue:       domain.FromAny(rule.ResultValue),
			})
		}
		def.ValueConditional = &domain.ValueConditional{
			Type:        domain.ValueConditionalType(vc.Type),
			Formula:     vc.Formula,
			SourceField: vc.SourceField,
			Rules:       rules,
		}
	}

	return def
}

func FromFieldDefinition(value domain.FieldDefinition) FieldDefinition {
	entity := FieldDefinition{
		ID:                   value.ID.String(),
		Version:              int(value.Version),
		Context:              string(value.Context),
		FieldName:            value.FieldName.String(),
		FieldLabel:           string(value.FieldLabel),
		FieldType:            string(value.FieldType),
		Category:             value.Category,
		CategoryDisplayName:  value.CategoryDisplayName,
		IsRepeatableCategory: value.IsRepeatableCategory,
		Section:              value.Section,
		Required:             value.Required,
		ReadOnly:             value.ReadOnly,
		Options:              Strings(value.Options),
		DisplayOrder:         value.DisplayOrder,
		VisibleToRoles:       Strings(value.VisibleToRoles),
		CreatedAt:            value.CreatedAt.Time,
		UpdatedAt:            value.UpdatedAt.Time,
	}

	if dc := value.DisplayConditional; dc != nil {
		entity.DisplayConditional = NullableDisplayConditional{
			DisplayConditional: DisplayConditional{
				Field:    dc.Field,
				Operator: string(dc.Operator),
				Value:    dc.Value.Any(),
			},
			Valid: true,
		}
	}

	if vc := value.ValueConditional; vc != nil {
		rules := make([]ConditionalRule, 0, len(vc.Rules))
		for _, rule := range vc.Rules {
			rules = append(rules, ConditionalRule{
				ConditionField:    rule.ConditionField,
				ConditionOperator: string(rule.ConditionOperator),
				ConditionValue:    rule.ConditionValue.Any(),
				ResultValue:       rule.ResultValue.Any(),
			})
		}
		entity.ValueConditional = NullableValueConditional{
			ValueConditional: ValueConditional{
				Type:        string(vc.Type),
				Formula:     vc.Formula,
				SourceField: vc.SourceField,
				Rules:       rules,
			},
			Valid: true,
		}
	}

	return entity
}
