package usecases

import (
	"context"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/formula"
	"loanportal-server/internal/infra/async"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

const DefaultAuditSchedule = "*/15 * * * *"

// AuditFinding is one stored definition that breaks a catalog invariant.
// The editor may save such states transiently, so they are reported, not
// repaired.
type AuditFinding struct {
	Context           domain.FieldContext
	FieldDefinitionID string
	FieldName         string
	Attribute         string
	Message           string
}

type AuditReport struct {
	Findings []AuditFinding
	Checked  int
}

func (r AuditReport) CountByContext(fieldContext domain.FieldContext) int {
	count := 0
	for _, finding := range r.Findings {
		if finding.Context == fieldContext {
			count++
		}
	}
	return count
}

func NewCatalogAuditWorker(schedule string, repository FieldDefinitionRepository) (*CatalogAuditWorker, error) {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parsing audit schedule %q: %w", schedule, err)
	}

	return &CatalogAuditWorker{
		schedule:   schedule,
		repository: repository,
		stop:       make(chan struct{}),
	}, nil
}

var _ async.Worker = &CatalogAuditWorker{}

type CatalogAuditWorker struct {
	schedule   string
	repository FieldDefinitionRepository

	stop     chan struct{}
	stopOnce sync.Once
}

func (w *CatalogAuditWorker) Run(ctx context.Context, done func()) {
	slog.Debug("catalog audit worker started", slog.String("schedule", w.schedule))
	defer done()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(w.schedule, func() {
		if _, err := w.Audit(ctx); err != nil {
			slog.Error("auditing field catalog", slog.String("error", err.Error()))
		}
	}); err != nil {
		slog.Error("scheduling catalog audit", slog.String("error", err.Error()))
		return
	}
	scheduler.Start()

	select {
	case <-ctx.Done():
	case <-w.stop:
	}

	<-scheduler.Stop().Done()
	slog.Info("catalog audit worker stopped")
}

func (w *CatalogAuditWorker) Shutdown() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Audit checks every stored definition of both contexts.
func (w *CatalogAuditWorker) Audit(ctx context.Context) (AuditReport, error) {
	report := AuditReport{Findings: make([]AuditFinding, 0)}

	for _, fieldContext := range []domain.FieldContext{domain.ContextApplication, domain.ContextLoan} {
		catalog, err := w.repository.FindAllByContext(ctx, fieldContext)
		if err != nil {
			return AuditReport{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}

		report.Checked += len(catalog)
		report.Findings = append(report.Findings, auditCatalog(fieldContext, catalog)...)
		auditProblems.WithLabelValues(string(fieldContext)).Set(float64(report.CountByContext(fieldContext)))
	}

	for _, finding := range report.Findings {
		slog.Warn("field definition breaks a catalog invariant",
			slog.String("context", string(finding.Context)),
			slog.String("field_definition_id", finding.FieldDefinitionID),
			slog.String("field_name", finding.FieldName),
			slog.String("attribute", finding.Attribute),
			slog.String("message", finding.Message))
	}

	slog.Info("field catalog audited",
		slog.Int("checked", report.Checked),
		slog.Int("findings", len(report.Findings)))

	return report, nil
}

func auditCatalog(fieldContext domain.FieldContext, catalog []domain.FieldDefinition) []AuditFinding {
	findings := make([]AuditFinding, 0)
	names := make(map[string]bool, len(catalog))
	for _, def := range catalog {
		names[def.FieldName.String()] = true
	}

	for _, def := range catalog {
		add := func(attribute, message string) {
			findings = append(findings, AuditFinding{
				Context:           fieldContext,
				FieldDefinitionID: def.ID.String(),
				FieldName:         def.FieldName.String(),
				Attribute:         attribute,
				Message:           message,
			})
		}

		var verr *domain.ValidationError
		if err := validateInCatalog(def, catalog); errors.As(err, &verr) {
			for _, problem := range verr.Problems {
				add(problem.Attribute, problem.Message)
			}
		}

		for attribute, ref := range references(def) {
			if ref != "" && !names[ref] {
				add(attribute, fmt.Sprintf("references unknown field %q", ref))
			}
		}
	}

	return findings
}

// references maps the attribute that names a field to that field name.
func references(def domain.FieldDefinition) map[string]string {
	refs := make(map[string]string)
	if dc := def.DisplayConditional; dc != nil {
		refs["display_conditional.field"] = dc.Field
	}

	vc := def.ValueConditional
	if vc == nil {
		return refs
	}
	switch vc.Type {
	case domain.ValueConditionalCopyFrom:
		refs["value_conditional.source_field"] = vc.SourceField
	case domain.ValueConditionalConditional:
		for i, rule := range vc.Rules {
			refs[fmt.Sprintf("value_conditional.rules[%d].condition_field", i)] = rule.ConditionField
		}
	case domain.ValueConditionalFormula:
		if expr, err := formula.Parse(vc.Formula); err == nil {
			for _, ref := range expr.References() {
				refs["value_conditional.formula{"+ref+"}"] = ref
			}
		}
	}
	return refs
}
