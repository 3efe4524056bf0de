package domain

import (
	"loanportal-server/internal/infra/utils"
	"regexp"
	"strings"
)

var snakeCasePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// Validate checks the invariants a definition can verify on its own.
// Catalog-wide rules such as field_name uniqueness live in the service.
func (f FieldDefinition) Validate() *ValidationError {
	verr := &ValidationError{FieldName: f.FieldName.String()}

	if !f.Context.IsValid() {
		verr.Add("context", "must be one of %q or %q", ContextApplication, ContextLoan)
	}

	name := f.FieldName.String()
	switch {
	case name == "":
		verr.Add("field_name", "is required")
	case !snakeCasePattern.MatchString(name):
		verr.Add("field_name", "must be snake_case, e.g. %q", utils.ToSnakeCase(name))
	}

	if strings.TrimSpace(string(f.FieldLabel)) == "" {
		verr.Add("field_label", "is required")
	}

	if !f.FieldType.IsValid() {
		verr.Add("field_type", "unknown type %q", f.FieldType)
	}

	if f.FieldType.RequiresOptions() && len(f.Options) == 0 {
		verr.Add("options", "%s fields need at least one option", f.FieldType)
	}

	seen := make(map[string]bool, len(f.Options))
	for _, option := range f.Options {
		if seen[option] {
			verr.Add("options", "duplicate option %q", option)
		}
		seen[option] = true
	}

	if f.DisplayOrder < 0 {
		verr.Add("display_order", "must not be negative")
	}

	if dc := f.DisplayConditional; dc != nil {
		if dc.Field == "" {
			verr.Add("display_conditional.field", "is required")
		} else if dc.Field == name {
			verr.Add("display_conditional.field", "must not reference the field itself")
		}
		if !dc.Operator.IsValid() {
			verr.Add("display_conditional.operator", "unknown operator %q", dc.Operator)
		}
	}

	if vc := f.ValueConditional; vc != nil {
		f.validateValueConditional(*vc, verr)
	}

	return verr
}

func (f FieldDefinition) validateValueConditional(vc ValueConditional, verr *ValidationError) {
	name := f.FieldName.String()

	switch vc.Type {
	case ValueConditionalFormula:
		if strings.TrimSpace(vc.Formula) == "" {
			verr.Add("value_conditional.formula", "is required")
		}
	case ValueConditionalCopyFrom:
		if vc.SourceField == "" {
			verr.Add("value_conditional.source_field", "is required")
		} else if vc.SourceField == name {
			verr.Add("value_conditional.source_field", "must not reference the field itself")
		}
	case ValueConditionalConditional:
		if len(vc.Rules) == 0 {
			verr.Add("value_conditional.rules", "at least one rule is required")
		}
		for _, rule := range vc.Rules {
			if rule.ConditionField == "" {
				verr.Add("value_conditional.rules.condition_field", "is required")
			} else if rule.ConditionField == name {
				verr.Add("value_conditional.rules.condition_field", "must not reference the field itself")
			}
			if !rule.ConditionOperator.IsValid() {
				verr.Add("value_conditional.rules.condition_operator", "unknown operator %q", rule.ConditionOperator)
			}
		}
	default:
		verr.Add("value_conditional.type", "unknown type %q", vc.Type)
	}
}
