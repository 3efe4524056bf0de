package evaluation

import (
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/formula"
	"sync"
	"time"
)

type DiagnosticKind string

const (
	DiagnosticUnknownOperator         DiagnosticKind = "unknown_operator"
	DiagnosticMissingReference        DiagnosticKind = "missing_reference"
	DiagnosticUnknownValueConditional DiagnosticKind = "unknown_value_conditional"
	DiagnosticFormulaError            DiagnosticKind = "formula_error"
)

// Diagnostic describes a conditional that could not be evaluated. The
// evaluator already fell back to its safe default when one is reported.
type Diagnostic struct {
	FieldName string
	Kind      DiagnosticKind
	Message   string
	Err       error
}

type DiagnosticsHook func(Diagnostic)

// Evaluator decides field visibility and derived values for a record. It
// never mutates the record and is safe for concurrent use.
type Evaluator struct {
	hook   DiagnosticsHook
	parsed *sync.Map
}

func NewEvaluator(hook DiagnosticsHook) *Evaluator {
	if hook == nil {
		hook = func(Diagnostic) {}
	}
	return &Evaluator{hook: hook, parsed: &sync.Map{}}
}

// WithHook returns an evaluator reporting to both hooks. Parsed formulas
// are shared with the receiver.
func (e *Evaluator) WithHook(hook DiagnosticsHook) *Evaluator {
	parent := e.hook
	return &Evaluator{
		hook: func(d Diagnostic) {
			parent(d)
			hook(d)
		},
		parsed: e.parsed,
	}
}

// ShouldDisplay fails open: a malformed display conditional shows the field.
func (e *Evaluator) ShouldDisplay(def domain.FieldDefinition, record domain.Record) bool {
	dc := def.DisplayConditional
	if dc == nil {
		return true
	}
	if dc.Field == "" {
		e.report(def, DiagnosticMissingReference, nil, "display conditional has no field")
		return true
	}

	matched, err := Match(dc.Operator, record.Get(dc.Field), dc.Value)
	if err != nil {
		e.report(def, DiagnosticUnknownOperator, err, "display conditional: %v", err)
		return true
	}
	return matched
}

// ComputeValue returns the derived value of a computed field. The boolean
// is false when the field must be left unset. A *formula.Error is returned
// for formulas that fail to parse or evaluate; callers keep the prior value.
func (e *Evaluator) ComputeValue(def domain.FieldDefinition, record domain.Record, allDefs []domain.FieldDefinition) (domain.Value, bool, error) {
	vc := def.ValueConditional
	if vc == nil {
		return domain.Null(), false, nil
	}

	switch vc.Type {
	case domain.ValueConditionalFormula:
		return e.computeFormula(def, record, allDefs)
	case domain.ValueConditionalCopyFrom:
		if vc.SourceField == "" || (!record.Has(vc.SourceField) && !defines(allDefs, vc.SourceField)) {
			e.report(def, DiagnosticMissingReference, nil, "copy_from source %q is not a known field", vc.SourceField)
			return domain.Null(), false, nil
		}
		return record.Get(vc.SourceField), true, nil
	case domain.ValueConditionalConditional:
		return e.computeRules(def, record)
	default:
		e.report(def, DiagnosticUnknownValueConditional, nil, "unknown value conditional type %q", vc.Type)
		return domain.Null(), false, nil
	}
}

func (e *Evaluator) computeRules(def domain.FieldDefinition, record domain.Record) (domain.Value, bool, error) {
	for i, rule := range def.ValueConditional.Rules {
		if rule.ConditionField == "" {
			e.report(def, DiagnosticMissingReference, nil, "rule %d has no condition field", i)
			return domain.Null(), false, nil
		}
		matched, err := Match(rule.ConditionOperator, record.Get(rule.ConditionField), rule.ConditionValue)
		if err != nil {
			e.report(def, DiagnosticUnknownOperator, err, "rule %d: %v", i, err)
			return domain.Null(), false, nil
		}
		if matched {
			return rule.ResultValue, true, nil
		}
	}
	return domain.Null(), false, nil
}

func (e *Evaluator) computeFormula(def domain.FieldDefinition, record domain.Record, allDefs []domain.FieldDefinition) (domain.Value, bool, error) {
	expr, err := e.expression(def.ValueConditional.Formula)
	if err != nil {
		e.report(def, DiagnosticFormulaError, err, "%v", err)
		return domain.Null(), false, err
	}

	value, err := expr.Evaluate(typedRecord{record: record, types: fieldTypes(allDefs)})
	if err != nil {
		e.report(def, DiagnosticFormulaError, err, "%v", err)
		return domain.Null(), false, err
	}
	return value, true, nil
}

func (e *Evaluator) expression(source string) (*formula.Expression, error) {
	if cached, ok := e.parsed.Load(source); ok {
		return cached.(*formula.Expression), nil
	}
	expr, err := formula.Parse(source)
	if err != nil {
		return nil, err
	}
	e.parsed.Store(source, expr)
	return expr, nil
}

func (e *Evaluator) report(def domain.FieldDefinition, kind DiagnosticKind, err error, format string, args ...any) {
	e.hook(Diagnostic{
		FieldName: def.FieldName.String(),
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Err:       err,
	})
}

// IsFormulaError reports whether err came from the formula language.
func IsFormulaError(err error) bool {
	return errors.Is(err, formula.ErrFormula)
}

// typedRecord lets a formula see numeric and date fields with their
// declared types even when the form submitted them as text.
type typedRecord struct {
	record domain.Record
	types  map[string]domain.FieldType
}

func (r typedRecord) Get(name string) domain.Value {
	v := r.record.Get(name)
	s, isString := v.Str()
	if !isString {
		return v
	}

	fieldType := r.types[name]
	switch {
	case fieldType.IsNumeric():
		if n, ok := domain.ParseNumber(s); ok {
			return domain.Number(n)
		}
	case fieldType.IsTemporal():
		if t, ok := domain.ParseDate(s); ok {
			return domain.Date(t)
		}
	}
	return v
}

func fieldTypes(defs []domain.FieldDefinition) map[string]domain.FieldType {
	types := make(map[string]domain.FieldType, len(defs))
	for _, def := range defs {
		types[def.FieldName.String()] = def.FieldType
	}
	return types
}

func defines(defs []domain.FieldDefinition, name string) bool {
	for _, def := range defs {
		if def.FieldName.String() == name {
			return true
		}
	}
	return false
}

func asDate(v domain.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	if s, ok := v.Str(); ok {
		return domain.ParseDate(s)
	}
	return time.Time{}, false
}
