package usecases_test

import (
	"context"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/evaluation"
	"loanportal-server/internal/fieldcatalog/usecases"
	mockusecases "loanportal-server/test/unit/doubles/fieldcatalog/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("RecordEvaluationService", func() {
	var (
		ctx      context.Context
		ctrl     *gomock.Controller
		mockRepo *mockusecases.MockFieldDefinitionRepository
		service  *usecases.SimpleRecordEvaluationService
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockRepo = mockusecases.NewMockFieldDefinitionRepository(ctrl)
		service = usecases.NewRecordEvaluationService(
			usecases.NewFieldResolver(mockRepo),
			evaluation.NewEvaluator(nil),
		)
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	outcomeOf := func(result usecases.RecordEvaluation, name string) usecases.FieldOutcome {
		for _, outcome := range result.Fields {
			if outcome.FieldName == name {
				return outcome
			}
		}
		ginkgo.Fail("no outcome for " + name)
		return usecases.FieldOutcome{}
	}

	ginkgo.It("feeds computed values to later fields", func() {
		price := definition("1", "purchase_price", 0, "deal")
		price.FieldType = domain.FieldTypeCurrency
		rehab := definition("2", "rehab_budget", 1, "deal")
		rehab.FieldType = domain.FieldTypeCurrency
		arv := definition("3", "after_repair_value", 2, "deal")
		arv.ValueConditional = &domain.ValueConditional{
			Type:    domain.ValueConditionalFormula,
			Formula: "{{purchase_price}} + {{rehab_budget}}",
		}
		copied := definition("4", "appraised_value", 3, "deal")
		copied.ValueConditional = &domain.ValueConditional{
			Type:        domain.ValueConditionalCopyFrom,
			SourceField: "after_repair_value",
		}

		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextLoan).
			Return([]domain.FieldDefinition{price, rehab, arv, copied}, nil)

		result, err := service.EvaluateRecord(ctx, domain.ContextLoan, "Lender", domain.Record{
			"purchase_price": domain.Number(100000),
			"rehab_budget":   domain.String("$25,000"),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Record.Get("after_repair_value")).To(gomega.Equal(domain.Number(125000)))
		gomega.Expect(outcomeOf(result, "appraised_value").Value).To(gomega.Equal(domain.Number(125000)))
		gomega.Expect(outcomeOf(result, "appraised_value").Computed).To(gomega.BeTrue())
		gomega.Expect(result.Diagnostics).To(gomega.BeEmpty())
	})

	ginkgo.It("keeps the prior value when a formula fails", func() {
		broken := definition("1", "total", 0, "")
		broken.ValueConditional = &domain.ValueConditional{
			Type:    domain.ValueConditionalFormula,
			Formula: "{{a}} ++ ",
		}
		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextApplication).Return([]domain.FieldDefinition{broken}, nil)

		result, err := service.EvaluateRecord(ctx, domain.ContextApplication, "Borrower", domain.Record{
			"total": domain.Number(42),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		outcome := outcomeOf(result, "total")
		gomega.Expect(outcome.Computed).To(gomega.BeFalse())
		gomega.Expect(outcome.Error).NotTo(gomega.BeEmpty())
		gomega.Expect(outcome.Value).To(gomega.Equal(domain.Number(42)))
		gomega.Expect(result.Diagnostics).To(gomega.ContainElement(
			gomega.HaveField("Kind", evaluation.DiagnosticFormulaError)))
	})

	ginkgo.It("reports visibility from the display conditional", func() {
		toggle := definition("1", "has_coborrowers", 0, "")
		toggle.FieldType = domain.FieldTypeCheckbox
		ssn := definition("2", "co_borrower_ssn", 1, "")
		ssn.DisplayConditional = &domain.DisplayConditional{
			Field:    "has_coborrowers",
			Operator: domain.OperatorEquals,
			Value:    domain.Bool(true),
		}
		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextApplication).
			Return([]domain.FieldDefinition{toggle, ssn}, nil).Times(2)

		shown, err := service.EvaluateRecord(ctx, domain.ContextApplication, "Borrower", domain.Record{
			"has_coborrowers": domain.String("true"),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(outcomeOf(shown, "co_borrower_ssn").Visible).To(gomega.BeTrue())

		hidden, err := service.EvaluateRecord(ctx, domain.ContextApplication, "Borrower", domain.Record{})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(outcomeOf(hidden, "co_borrower_ssn").Visible).To(gomega.BeFalse())
	})

	ginkgo.It("does not mutate the caller's record", func() {
		label := definition("1", "loan_status_label", 0, "")
		label.ValueConditional = &domain.ValueConditional{
			Type: domain.ValueConditionalConditional,
			Rules: []domain.ConditionalRule{
				{ConditionField: "status", ConditionOperator: domain.OperatorEquals, ConditionValue: domain.String("approved"), ResultValue: domain.String("Approved")},
				{ConditionField: "status", ConditionOperator: domain.OperatorEquals, ConditionValue: domain.String("rejected"), ResultValue: domain.String("Rejected")},
			},
		}
		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextLoan).Return([]domain.FieldDefinition{label}, nil)

		record := domain.Record{"status": domain.String("rejected")}
		result, err := service.EvaluateRecord(ctx, domain.ContextLoan, "Lender", record)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Record.Get("loan_status_label")).To(gomega.Equal(domain.String("Rejected")))
		gomega.Expect(record.Has("loan_status_label")).To(gomega.BeFalse())
	})
})
