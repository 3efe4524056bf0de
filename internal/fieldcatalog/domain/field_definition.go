package domain

import (
	"loanportal-server/internal/infra/utils"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	"slices"
	"strings"
	"time"
)

type FieldContext string

const (
	ContextApplication FieldContext = "application"
	ContextLoan        FieldContext = "loan"
)

func (c FieldContext) IsValid() bool {
	return c == ContextApplication || c == ContextLoan
}

func ParseFieldContext(value string) (FieldContext, error) {
	c := FieldContext(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", ErrUnknownFieldContext
	}
	return c, nil
}

type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeSelect      FieldType = "select"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeDate        FieldType = "date"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeEmail       FieldType = "email"
	FieldTypeTel         FieldType = "tel"
	FieldTypeCurrency    FieldType = "currency"
	FieldTypePercentage  FieldType = "percentage"
	FieldTypeSSN         FieldType = "ssn"
	FieldTypeZipcode     FieldType = "zipcode"
	FieldTypeAddress     FieldType = "address"
	FieldTypeFullAddress FieldType = "fulladdress"
	FieldTypeState       FieldType = "state"
	FieldTypeCity        FieldType = "city"
	FieldTypeCounty      FieldType = "county"
	FieldTypeTextarea    FieldType = "textarea"
)

var FieldTypes = []FieldType{
	FieldTypeText, FieldTypeNumber, FieldTypeCheckbox, FieldTypeSelect, FieldTypeRadio,
	FieldTypeDate, FieldTypeDatetime, FieldTypeEmail, FieldTypeTel, FieldTypeCurrency,
	FieldTypePercentage, FieldTypeSSN, FieldTypeZipcode, FieldTypeAddress, FieldTypeFullAddress,
	FieldTypeState, FieldTypeCity, FieldTypeCounty, FieldTypeTextarea,
}

func (t FieldType) IsValid() bool {
	return slices.Contains(FieldTypes, t)
}

func (t FieldType) RequiresOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

func (t FieldType) IsNumeric() bool {
	return t == FieldTypeNumber || t == FieldTypeCurrency || t == FieldTypePercentage
}

func (t FieldType) IsTemporal() bool {
	return t == FieldTypeDate || t == FieldTypeDatetime
}

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorContains    Operator = "contains"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorIn          Operator = "in"
)

var Operators = []Operator{
	OperatorEquals, OperatorNotEquals, OperatorContains, OperatorGreaterThan, OperatorLessThan, OperatorIn,
}

func (o Operator) IsValid() bool {
	return slices.Contains(Operators, o)
}

type ValueConditionalType string

const (
	ValueConditionalFormula     ValueConditionalType = "formula"
	ValueConditionalCopyFrom    ValueConditionalType = "copy_from"
	ValueConditionalConditional ValueConditionalType = "conditional_value"
)

func (t ValueConditionalType) IsValid() bool {
	return t == ValueConditionalFormula || t == ValueConditionalCopyFrom || t == ValueConditionalConditional
}

type DisplayConditional struct {
	Field    string
	Operator Operator
	Value    Value
}

type ConditionalRule struct {
	ConditionField    string
	ConditionOperator Operator
	ConditionValue    Value
	ResultValue       Value
}

type ValueConditional struct {
	Type        ValueConditionalType
	Formula     string
	SourceField string
	Rules       []ConditionalRule
}

// References lists the field names the conditional reads, excluding
// formula placeholders which need the formula parser to extract.
func (vc ValueConditional) References() []string {
	switch vc.Type {
	case ValueConditionalCopyFrom:
		return []string{vc.SourceField}
	case ValueConditionalConditional:
		refs := make([]string, 0, len(vc.Rules))
		for _, rule := range vc.Rules {
			refs = append(refs, rule.ConditionField)
		}
		return refs
	default:
		return nil
	}
}

type FieldDefinition struct {
	ID                   shareddomain.ID
	Version              shareddomain.Version
	Context              FieldContext
	FieldName            shareddomain.Name
	FieldLabel           shareddomain.DisplayName
	FieldType            FieldType
	Category             string
	CategoryDisplayName  string
	IsRepeatableCategory bool
	Section              string
	Required             bool
	ReadOnly             bool
	Options              []string
	DisplayOrder         int
	DisplayConditional   *DisplayConditional
	ValueConditional     *ValueConditional
	VisibleToRoles       []string
	CreatedAt            utils.Time
	UpdatedAt            utils.Time
}

// CategoryKey is the grouping key: the display name when set, the raw
// category otherwise.
func (f FieldDefinition) CategoryKey() string {
	if strings.TrimSpace(f.CategoryDisplayName) != "" {
		return f.CategoryDisplayName
	}
	return f.Category
}

func (f FieldDefinition) IsComputed() bool {
	return f.ValueConditional != nil
}

func (f FieldDefinition) Clone() FieldDefinition {
	clone := f
	clone.Options = slices.Clone(f.Options)
	clone.VisibleToRoles = slices.Clone(f.VisibleToRoles)
	if f.DisplayConditional != nil {
		dc := *f.DisplayConditional
		clone.DisplayConditional = &dc
	}
	if f.ValueConditional != nil {
		vc := *f.ValueConditional
		vc.Rules = slices.Clone(f.ValueConditional.Rules)
		clone.ValueConditional = &vc
	}
	return clone
}

// FieldPatch carries a partial update. Nil fields are left untouched; the
// Remove flags clear a conditional.
type FieldPatch struct {
	FieldName                *string
	FieldLabel               *string
	FieldType                *FieldType
	Category                 *string
	CategoryDisplayName      *string
	IsRepeatableCategory     *bool
	Section                  *string
	Required                 *bool
	ReadOnly                 *bool
	Options                  *[]string
	DisplayOrder             *int
	DisplayConditional       *DisplayConditional
	RemoveDisplayConditional bool
	ValueConditional         *ValueConditional
	RemoveValueConditional   bool
	VisibleToRoles           *[]string
}

func (p FieldPatch) IsEmpty() bool {
	return p == (FieldPatch{})
}

// Apply returns a copy of the definition with the patch applied.
func (f FieldDefinition) Apply(p FieldPatch) FieldDefinition {
	result := f.Clone()
	if p.FieldName != nil {
		result.FieldName = shareddomain.Name(*p.FieldName)
	}
	if p.FieldLabel != nil {
		result.FieldLabel = shareddomain.DisplayName(*p.FieldLabel)
	}
	if p.FieldType != nil {
		result.FieldType = *p.FieldType
	}
	if p.Category != nil {
		result.Category = *p.Category
	}
	if p.CategoryDisplayName != nil {
		result.CategoryDisplayName = *p.CategoryDisplayName
	}
	if p.IsRepeatableCategory != nil {
		result.IsRepeatableCategory = *p.IsRepeatableCategory
	}
	if p.Section != nil {
		result.Section = *p.Section
	}
	if p.Required != nil {
		result.Required = *p.Required
	}
	if p.ReadOnly != nil {
		result.ReadOnly = *p.ReadOnly
	}
	if p.Options != nil {
		result.Options = slices.Clone(*p.Options)
	}
	if p.DisplayOrder != nil {
		result.DisplayOrder = *p.DisplayOrder
	}
	if p.RemoveDisplayConditional {
		result.DisplayConditional = nil
	} else if p.DisplayConditional != nil {
		dc := *p.DisplayConditional
		result.DisplayConditional = &dc
	}
	if p.RemoveValueConditional {
		result.ValueConditional = nil
	} else if p.ValueConditional != nil {
		vc := *p.ValueConditional
		vc.Rules = slices.Clone(p.ValueConditional.Rules)
		result.ValueConditional = &vc
	}
	if p.VisibleToRoles != nil {
		result.VisibleToRoles = slices.Clone(*p.VisibleToRoles)
	}

	result.Version = result.Version.Next()
	result.UpdatedAt = utils.Time{Time: time.Now()}
	return result
}

func NewFieldDefinitionBuilder() *fieldDefinitionBuilder {
	return &fieldDefinitionBuilder{}
}

type fieldDefinitionBuilder struct {
	actions []fieldDefinitionHandler
}

type fieldDefinitionHandler func(v *FieldDefinition) error

func (b *fieldDefinitionBuilder) WithID(value shareddomain.ID) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.ID = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithContext(value FieldContext) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		if !value.IsValid() {
			return ErrUnknownFieldContext
		}
		d.Context = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithFieldName(value string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.FieldName = shareddomain.Name(value)
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithFieldLabel(value string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.FieldLabel = shareddomain.DisplayName(value)
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithFieldType(value FieldType) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.FieldType = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithCategory(category, displayName string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.Category = category
		d.CategoryDisplayName = displayName
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithRepeatableCategory(value bool) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.IsRepeatableCategory = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithSection(value string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.Section = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithRequired(value bool) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.Required = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithReadOnly(value bool) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.ReadOnly = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithOptions(value []string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.Options = slices.Clone(value)
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithDisplayOrder(value int) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.DisplayOrder = value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithDisplayConditional(value DisplayConditional) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.DisplayConditional = &value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithValueConditional(value ValueConditional) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		value.Rules = slices.Clone(value.Rules)
		d.ValueConditional = &value
		return nil
	})
	return b
}

func (b *fieldDefinitionBuilder) WithVisibleToRoles(value []string) *fieldDefinitionBuilder {
	b.actions = append(b.actions, func(d *FieldDefinition) error {
		d.VisibleToRoles = slices.Clone(value)
		return nil
	})
	return b
}

// Build leaves the ID empty unless WithID was used; the store assigns it.
func (b *fieldDefinitionBuilder) Build() (FieldDefinition, error) {
	now := utils.Time{Time: time.Now()}
	result := FieldDefinition{
		Version:        shareddomain.InitialVersion,
		FieldType:      FieldTypeText,
		Options:        make([]string, 0),
		VisibleToRoles: make([]string, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, a := range b.actions {
		if err := a(&result); err != nil {
			return FieldDefinition{}, err
		}
	}

	return result, nil
}
