package usecases

import (
	"context"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/evaluation"
	"loanportal-server/internal/logger"
)

//go:generate mockgen -source=record_evaluation_service.go -destination=../../../test/unit/doubles/fieldcatalog/usecases/record_evaluation_service_mock.go -package=usecases -mock_names=RecordEvaluationService=MockRecordEvaluationService

// FieldOutcome is the evaluation result of one field. Value holds the value
// the record carries after evaluation, computed or not.
type FieldOutcome struct {
	FieldName string
	Visible   bool
	Computed  bool
	Value     domain.Value
	Error     string
}

type RecordEvaluation struct {
	Record      domain.Record
	Fields      []FieldOutcome
	Diagnostics []evaluation.Diagnostic
}

type RecordEvaluationService interface {
	EvaluateRecord(ctx context.Context, fieldContext domain.FieldContext, role string, record domain.Record) (RecordEvaluation, error)
}

func NewRecordEvaluationService(resolver FieldResolver, evaluator *evaluation.Evaluator) *SimpleRecordEvaluationService {
	return &SimpleRecordEvaluationService{
		resolver:  resolver,
		evaluator: evaluator,
	}
}

var _ RecordEvaluationService = &SimpleRecordEvaluationService{}

type SimpleRecordEvaluationService struct {
	resolver  FieldResolver
	evaluator *evaluation.Evaluator
}

// EvaluateRecord walks the resolved fields in order. A computed value is
// written into the working record so later fields see it; a field whose
// formula fails keeps the value it had.
func (s *SimpleRecordEvaluationService) EvaluateRecord(ctx context.Context, fieldContext domain.FieldContext, role string, record domain.Record) (RecordEvaluation, error) {
	resolution, err := s.resolver.ResolveFields(ctx, fieldContext, role)
	if err != nil {
		return RecordEvaluation{}, err
	}

	diagnostics := make([]evaluation.Diagnostic, 0)
	evaluator := s.evaluator.WithHook(func(d evaluation.Diagnostic) {
		diagnostics = append(diagnostics, d)
	})

	working := record.Clone()

	outcomes := make([]FieldOutcome, 0, len(resolution.Fields))
	for _, def := range resolution.Fields {
		name := def.FieldName.String()
		outcome := FieldOutcome{
			FieldName: name,
			Visible:   evaluator.ShouldDisplay(def, working),
		}

		value, ok, err := evaluator.ComputeValue(def, working, resolution.Fields)
		switch {
		case err != nil:
			formulaFailures.WithLabelValues(string(fieldContext)).Inc()
			outcome.Error = err.Error()
		case ok:
			working[name] = value
			outcome.Computed = true
		}

		outcome.Value = working.Get(name)
		outcomes = append(outcomes, outcome)
	}

	return RecordEvaluation{
		Record:      working,
		Fields:      outcomes,
		Diagnostics: diagnostics,
	}, nil
}

// LogDiagnostics is the process-wide diagnostics hook: it counts every
// diagnostic and writes it to the integration log.
func LogDiagnostics(d evaluation.Diagnostic) {
	evaluationDiagnostics.WithLabelValues(string(d.Kind)).Inc()
	logger.Warn("field conditional fell back to its default",
		"field_name", d.FieldName,
		"kind", string(d.Kind),
		"message", d.Message)
}
