package usecases_test

import (
	"context"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/usecases"
	mockusecases "loanportal-server/test/unit/doubles/fieldcatalog/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("CatalogAuditWorker", func() {
	var (
		ctx      context.Context
		ctrl     *gomock.Controller
		mockRepo *mockusecases.MockFieldDefinitionRepository
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockRepo = mockusecases.NewMockFieldDefinitionRepository(ctrl)
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("rejects an invalid schedule", func() {
		_, err := usecases.NewCatalogAuditWorker("every tuesday", mockRepo)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("reports invariant violations and dangling references", func() {
		worker, err := usecases.NewCatalogAuditWorker("", mockRepo)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		purpose := definition("1", "loan_purpose", 0, "")
		purpose.FieldType = domain.FieldTypeSelect
		total := definition("2", "total", 1, "")
		total.ValueConditional = &domain.ValueConditional{
			Type:    domain.ValueConditionalFormula,
			Formula: "{{purchase_price}} + 1",
		}
		healthy := definition("3", "email", 2, "")

		loanDefs := []domain.FieldDefinition{purpose, total, healthy}
		for i := range loanDefs {
			loanDefs[i].Context = domain.ContextLoan
		}

		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextApplication).Return(nil, nil)
		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextLoan).Return(loanDefs, nil)

		report, err := worker.Audit(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Checked).To(gomega.Equal(3))
		gomega.Expect(report.CountByContext(domain.ContextLoan)).To(gomega.Equal(2))
		gomega.Expect(report.Findings).To(gomega.ContainElements(
			gomega.HaveField("Attribute", "options"),
			gomega.HaveField("FieldName", "total"),
		))
	})

	ginkgo.It("fails when the store cannot be read", func() {
		worker, err := usecases.NewCatalogAuditWorker("@hourly", mockRepo)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		mockRepo.EXPECT().FindAllByContext(ctx, domain.ContextApplication).Return(nil, errors.New("down"))

		_, err = worker.Audit(ctx)
		gomega.Expect(err).To(gomega.MatchError(usecases.ErrCatalogUnavailable))
	})

	ginkgo.It("stops on shutdown", func() {
		worker, err := usecases.NewCatalogAuditWorker("@hourly", mockRepo)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		done := make(chan struct{})
		go worker.Run(context.Background(), func() { close(done) })

		worker.Shutdown()
		worker.Shutdown()
		gomega.Eventually(done).Should(gomega.BeClosed())
	})
})
