package persistence_test

import (
	"context"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/persistence"
	"loanportal-server/internal/infra/cache"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	mockusecases "loanportal-server/test/unit/doubles/fieldcatalog/usecases"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("CachedFieldDefinitionRepository", func() {
	var (
		ctx        context.Context
		ctrl       *gomock.Controller
		next       *mockusecases.MockFieldDefinitionRepository
		store      *cache.RistrettoCache
		repository *persistence.CachedFieldDefinitionRepository
		catalog    []domain.FieldDefinition
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		next = mockusecases.NewMockFieldDefinitionRepository(ctrl)

		var err error
		store, err = cache.New(cache.DefaultConfig())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		repository = persistence.NewCachedFieldDefinitionRepository(next, store, time.Minute)

		email := buildDefinition(domain.ContextApplication, "email")
		email.ID = "f-1"
		email.DisplayConditional = &domain.DisplayConditional{
			Field:    "contact_by_email",
			Operator: domain.OperatorEquals,
			Value:    domain.Bool(true),
		}
		phone := buildDefinition(domain.ContextApplication, "phone")
		phone.ID = "f-2"
		catalog = []domain.FieldDefinition{email, phone}
	})

	ginkgo.AfterEach(func() {
		store.Close()
		ctrl.Finish()
	})

	names := func(defs []domain.FieldDefinition) []string {
		result := make([]string, 0, len(defs))
		for _, def := range defs {
			result = append(result, def.FieldName.String())
		}
		return result
	}

	ginkgo.It("loads a context once and serves the snapshot afterwards", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextApplication).Return(catalog, nil).Times(1)

		first, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(names(first)).To(gomega.Equal([]string{"email", "phone"}))
		gomega.Expect(names(second)).To(gomega.Equal([]string{"email", "phone"}))
		gomega.Expect(second[0].DisplayConditional.Value).To(gomega.Equal(domain.Bool(true)))
	})

	ginkgo.It("keeps contexts apart", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextApplication).Return(catalog, nil)
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextLoan).Return(nil, nil)

		_, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		loan, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(loan).To(gomega.BeEmpty())
	})

	ginkgo.It("does not cache a failed load", func() {
		gomock.InOrder(
			next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextLoan).Return(nil, errors.New("store down")),
			next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextLoan).Return(nil, nil),
		)

		_, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).To(gomega.MatchError("store down"))
		_, err = repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("reloads a context after a local write", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextApplication).Return(catalog, nil).Times(2)
		next.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, def domain.FieldDefinition) (domain.FieldDefinition, error) {
				def.ID = "f-3"
				return def, nil
			})

		_, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = repository.Create(ctx, buildDefinition(domain.ContextApplication, "fax"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("invalidates the context of a deleted definition", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextApplication).Return(catalog, nil).Times(2)
		next.EXPECT().GetByID(gomock.Any(), shareddomain.ID("f-2")).Return(catalog[1], nil)
		next.EXPECT().Delete(gomock.Any(), shareddomain.ID("f-2")).Return(nil)

		_, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(repository.Delete(ctx, "f-2")).To(gomega.Succeed())
		_, err = repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("keeps the snapshot when a write fails", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextApplication).Return(catalog, nil).Times(1)
		next.EXPECT().Update(gomock.Any(), shareddomain.ID("f-1"), gomock.Any()).
			Return(domain.FieldDefinition{}, errors.New("conflict"))

		_, err := repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, err = repository.Update(ctx, "f-1", domain.FieldPatch{})
		gomega.Expect(err).To(gomega.HaveOccurred())
		_, err = repository.FindAllByContext(ctx, domain.ContextApplication)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("drops a snapshot on Invalidate", func() {
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextLoan).Return(nil, nil).Times(2)

		_, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(repository.Invalidate(ctx, domain.ContextLoan)).To(gomega.Succeed())
		_, err = repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("rejects an unknown context on Invalidate", func() {
		err := repository.Invalidate(ctx, domain.FieldContext("borrower"))
		gomega.Expect(err).To(gomega.MatchError(domain.ErrUnknownFieldContext))
	})

	ginkgo.It("falls back to the store when the snapshot is unreadable", func() {
		gomega.Expect(store.Set(ctx, "field_catalog:loan", []byte{0xc1}, time.Minute)).To(gomega.BeTrue())
		next.EXPECT().FindAllByContext(gomock.Any(), domain.ContextLoan).Return(nil, nil)

		defs, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(defs).To(gomega.BeEmpty())

		_, found := store.Get(ctx, "field_catalog:loan")
		gomega.Expect(found).To(gomega.BeFalse())
	})
})
