package internal

import (
	"encoding/json"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"time"
)

type DisplayConditional struct {
	Field    string       `json:"field"`
	Operator string       `json:"operator"`
	Value    domain.Value `json:"value"`
}

type ConditionalRule struct {
	ConditionField    string       `json:"condition_field"`
	ConditionOperator string       `json:"condition_operator"`
	ConditionValue    domain.Value `json:"condition_value"`
	ResultValue       domain.Value `json:"result_value"`
}

type ValueConditional struct {
	Type        string            `json:"type"`
	Formula     string            `json:"formula,omitempty"`
	SourceField string            `json:"source_field,omitempty"`
	Rules       []ConditionalRule `json:"rules,omitempty"`
}

type FieldDefinitionCreateRequest struct {
	FieldName            string              `json:"field_name"`
	FieldLabel           string              `json:"field_label"`
	FieldType            string              `json:"field_type"`
	Category             string              `json:"category"`
	CategoryDisplayName  string              `json:"category_display_name"`
	IsRepeatableCategory bool                `json:"is_repeatable_category"`
	Section              string              `json:"section"`
	Required             bool                `json:"required"`
	ReadOnly             bool                `json:"read_only"`
	Options              []string            `json:"options"`
	DisplayConditional   *DisplayConditional `json:"display_conditional"`
	ValueConditional     *ValueConditional   `json:"value_conditional"`
	VisibleToRoles       []string            `json:"visible_to_roles"`
}

// FieldDefinitionUpdateRequest is a partial update. The conditionals are
// kept raw so an explicit null, which removes them, differs from absence.
type FieldDefinitionUpdateRequest struct {
	FieldName            *string         `json:"field_name"`
	FieldLabel           *string         `json:"field_label"`
	FieldType            *string         `json:"field_type"`
	Category             *string         `json:"category"`
	CategoryDisplayName  *string         `json:"category_display_name"`
	IsRepeatableCategory *bool           `json:"is_repeatable_category"`
	Section              *string         `json:"section"`
	Required             *bool           `json:"required"`
	ReadOnly             *bool           `json:"read_only"`
	Options              *[]string       `json:"options"`
	DisplayOrder         *int            `json:"display_order"`
	DisplayConditional   json.RawMessage `json:"display_conditional"`
	ValueConditional     json.RawMessage `json:"value_conditional"`
	VisibleToRoles       *[]string       `json:"visible_to_roles"`
}

type FieldDefinitionResponse struct {
	ID                   string              `json:"id"`
	Version              int                 `json:"version"`
	Context              string              `json:"context"`
	FieldName            string              `json:"field_name"`
	FieldLabel           string              `json:"field_label"`
	FieldType            string              `json:"field_type"`
	Category             string              `json:"category"`
	CategoryDisplayName  string              `json:"category_display_name"`
	IsRepeatableCategory bool                `json:"is_repeatable_category"`
	Section              string              `json:"section"`
	Required             bool                `json:"required"`
	ReadOnly             bool                `json:"read_only"`
	Options              []string            `json:"options"`
	DisplayOrder         int                 `json:"display_order"`
	DisplayConditional   *DisplayConditional `json:"display_conditional"`
	ValueConditional     *ValueConditional   `json:"value_conditional"`
	VisibleToRoles       []string            `json:"visible_to_roles"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func (r FieldDefinitionCreateRequest) ToDomain(fieldContext domain.FieldContext) (domain.FieldDefinition, error) {
	fieldType := domain.FieldTypeText
	if r.FieldType != "" {
		fieldType = domain.FieldType(r.FieldType)
	}

	builder := domain.NewFieldDefinitionBuilder().
		WithContext(fieldContext).
		WithFieldName(r.FieldName).
		WithFieldLabel(r.FieldLabel).
		WithFieldType(fieldType).
		WithCategory(r.Category, r.CategoryDisplayName).
		WithRepeatableCategory(r.IsRepeatableCategory).
		WithSection(r.Section).
		WithRequired(r.Required).
		WithReadOnly(r.ReadOnly).
		WithOptions(nonNil(r.Options)).
		WithVisibleToRoles(nonNil(r.VisibleToRoles))

	if r.DisplayConditional != nil {
		builder = builder.WithDisplayConditional(r.DisplayConditional.toDomain())
	}
	if r.ValueConditional != nil {
		builder = builder.WithValueConditional(r.ValueConditional.toDomain())
	}

	return builder.Build()
}

func (r FieldDefinitionUpdateRequest) ToPatch() (domain.FieldPatch, error) {
	patch := domain.FieldPatch{
		FieldName:            r.FieldName,
		FieldLabel:           r.FieldLabel,
		Category:             r.Category,
		CategoryDisplayName:  r.CategoryDisplayName,
		IsRepeatableCategory: r.IsRepeatableCategory,
		Section:              r.Section,
		Required:             r.Required,
		ReadOnly:             r.ReadOnly,
		Options:              r.Options,
		DisplayOrder:         r.DisplayOrder,
		VisibleToRoles:       r.VisibleToRoles,
	}
	if r.FieldType != nil {
		fieldType := domain.FieldType(*r.FieldType)
		patch.FieldType = &fieldType
	}

	if len(r.DisplayConditional) > 0 {
		if isNull(r.DisplayConditional) {
			patch.RemoveDisplayConditional = true
		} else {
			var dc DisplayConditional
			if err := json.Unmarshal(r.DisplayConditional, &dc); err != nil {
				return domain.FieldPatch{}, fmt.Errorf("decoding display_conditional: %w", err)
			}
			converted := dc.toDomain()
			patch.DisplayConditional = &converted
		}
	}

	if len(r.ValueConditional) > 0 {
		if isNull(r.ValueConditional) {
			patch.RemoveValueConditional = true
		} else {
			var vc ValueConditional
			if err := json.Unmarshal(r.ValueConditional, &vc); err != nil {
				return domain.FieldPatch{}, fmt.Errorf("decoding value_conditional: %w", err)
			}
			converted := vc.toDomain()
			patch.ValueConditional = &converted
		}
	}

	return patch, nil
}

func ToFieldDefinitionResponse(def domain.FieldDefinition) FieldDefinitionResponse {
	response := FieldDefinitionResponse{
		ID:                   def.ID.String(),
		Version:              int(def.Version),
		Context:              string(def.Context),
		FieldName:            def.FieldName.String(),
		FieldLabel:           string(def.FieldLabel),
		FieldType:            string(def.FieldType),
		Category:             def.Category,
		CategoryDisplayName:  def.CategoryDisplayName,
		IsRepeatableCategory: def.IsRepeatableCategory,
		Section:              def.Section,
		Required:             def.Required,
		ReadOnly:             def.ReadOnly,
		Options:              nonNil(def.Options),
		DisplayOrder:         def.DisplayOrder,
		VisibleToRoles:       nonNil(def.VisibleToRoles),
		CreatedAt:            def.CreatedAt.Time,
		UpdatedAt:            def.UpdatedAt.Time,
	}

	if dc := def.DisplayConditional; dc != nil {
		response.DisplayConditional = &DisplayConditional{
			Field:    dc.Field,
			Operator: string(dc.Operator),
			Value:    dc.Value,
		}
	}

	if vc := def.ValueConditional; vc != nil {
		rules := make([]ConditionalRule, len(vc.Rules))
		for i, rule := range vc.Rules {
			rules[i] = ConditionalRule{
				ConditionField:    rule.ConditionField,
				ConditionOperator: string(rule.ConditionOperator),
				ConditionValue:    rule.ConditionValue,
				ResultValue:       rule.ResultValue,
			}
		}
		response.ValueConditional = &ValueConditional{
			Type:        string(vc.Type),
			Formula:     vc.Formula,
			SourceField: vc.SourceField,
			Rules:       rules,
		}
	}

	return response
}

func ToFieldDefinitionResponses(defs []domain.FieldDefinition) []FieldDefinitionResponse {
	result := make([]FieldDefinitionResponse, len(defs))
	for i, def := range defs {
		result[i] = ToFieldDefinitionResponse(def)
	}
	return result
}

func (dc DisplayConditional) toDomain() domain.DisplayConditional {
	return domain.DisplayConditional{
		Field:    dc.Field,
		Operator: domain.Operator(dc.Operator),
		Value:    dc.Value,
	}
}

func (vc ValueConditional) toDomain() domain.ValueConditional {
	rules := make([]domain.ConditionalRule, len(vc.Rules))
	for i, rule := range vc.Rules {
		rules[i] = domain.ConditionalRule{
			ConditionField:    rule.ConditionField,
			ConditionOperator: domain.Operator(rule.ConditionOperator),
			ConditionValue:    rule.ConditionValue,
			ResultValue:       rule.ResultValue,
		}
	}
	return domain.ValueConditional{
		Type:        domain.ValueConditionalType(vc.Type),
		Formula:     vc.Formula,
		SourceField: vc.SourceField,
		Rules:       rules,
	}
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
