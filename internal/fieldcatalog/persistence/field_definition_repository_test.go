package persistence_test

import (
	"context"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/persistence"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/pubsub"
	"loanportal-server/internal/infra/sql"
	shareddomain "loanportal-server/internal/shared_kernel/domain"
	mockpubsub "loanportal-server/test/unit/doubles/infra/pubsub"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func buildDefinition(fieldContext domain.FieldContext, name string) domain.FieldDefinition {
	def, err := domain.NewFieldDefinitionBuilder().
		WithContext(fieldContext).
		WithFieldName(name).
		WithFieldLabel(name).
		Build()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return def
}

var _ = ginkgo.Describe("SimpleFieldDefinitionRepository", func() {
	var (
		ctx           context.Context
		ctrl          *gomock.Controller
		mockFactory   *mockpubsub.MockPublisherFactory
		mockPublisher *mockpubsub.MockPublisher
		repository    *persistence.SimpleFieldDefinitionRepository
		events        []domain.FieldDefinitionEvent
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockFactory = mockpubsub.NewMockPublisherFactory(ctrl)
		mockPublisher = mockpubsub.NewMockPublisher(ctrl)
		events = nil

		mockFactory.EXPECT().
			New(pubsub.Topic(domain.FieldDefinitionEventsTopic), domain.FieldDefinitionEvent{}).
			Return(mockPublisher, nil)
		mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
			func(_ context.Context, key pubsub.Key, message pubsub.Message) error {
				event := message.(domain.FieldDefinitionEvent)
				gomega.Expect(string(key)).To(gomega.Equal(event.Context))
				events = append(events, event)
				return nil
			})

		orm, err := sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		repository, err = persistence.NewFieldDefinitionRepository(mockFactory, orm)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("assigns an id and announces the new definition", func() {
		created, err := repository.Create(ctx, buildDefinition(domain.ContextApplication, "email"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(created.ID).NotTo(gomega.BeEmpty())
		gomega.Expect(created.Version).To(gomega.Equal(shareddomain.Version(1)))

		gomega.Expect(events).To(gomega.HaveLen(1))
		gomega.Expect(events[0].EventType()).To(gomega.Equal(domain.EventFieldCreated))
		gomega.Expect(events[0].FieldDefinitionID).To(gomega.Equal(created.ID.String()))
	})

	ginkgo.It("lists a context in insertion order", func() {
		for _, name := range []string{"zeta", "alpha", "mid"} {
			_, err := repository.Create(ctx, buildDefinition(domain.ContextLoan, name))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		}
		_, err := repository.Create(ctx, buildDefinition(domain.ContextApplication, "other"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		defs, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.FieldName.String())
		}
		gomega.Expect(names).To(gomega.Equal([]string{"zeta", "alpha", "mid"}))
	})

	ginkgo.It("round trips conditionals and role lists", func() {
		def := buildDefinition(domain.ContextApplication, "loan_status_label")
		def.Options = []string{"Approved", "Rejected"}
		def.VisibleToRoles = []string{"Broker"}
		def.DisplayConditional = &domain.DisplayConditional{
			Field:    "has_coborrowers",
			Operator: domain.OperatorEquals,
			Value:    domain.Bool(true),
		}
		def.ValueConditional = &domain.ValueConditional{
			Type: domain.ValueConditionalConditional,
			Rules: []domain.ConditionalRule{{
				ConditionField:    "status",
				ConditionOperator: domain.OperatorEquals,
				ConditionValue:    domain.String("rejected"),
				ResultValue:       domain.Number(2),
			}},
		}

		created, err := repository.Create(ctx, def)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		stored, err := repository.GetByID(ctx, created.ID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(stored.Options).To(gomega.Equal([]string{"Approved", "Rejected"}))
		gomega.Expect(stored.VisibleToRoles).To(gomega.Equal([]string{"Broker"}))
		gomega.Expect(stored.DisplayConditional.Value).To(gomega.Equal(domain.Bool(true)))
		gomega.Expect(stored.ValueConditional.Rules[0].ResultValue).To(gomega.Equal(domain.Number(2)))
	})

	ginkgo.It("stores a definition without conditionals as such", func() {
		created, err := repository.Create(ctx, buildDefinition(domain.ContextApplication, "plain"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		stored, err := repository.GetByID(ctx, created.ID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(stored.DisplayConditional).To(gomega.BeNil())
		gomega.Expect(stored.ValueConditional).To(gomega.BeNil())
	})

	ginkgo.It("patches only the given attributes and bumps the version", func() {
		created, err := repository.Create(ctx, buildDefinition(domain.ContextApplication, "email"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		order := 7
		updated, err := repository.Update(ctx, created.ID, domain.FieldPatch{DisplayOrder: &order})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(updated.DisplayOrder).To(gomega.Equal(7))
		gomega.Expect(updated.FieldName).To(gomega.Equal(created.FieldName))
		gomega.Expect(updated.Version).To(gomega.Equal(shareddomain.Version(2)))
		gomega.Expect(events[len(events)-1].EventType()).To(gomega.Equal(domain.EventFieldUpdated))
	})

	ginkgo.It("removes a conditional on request", func() {
		def := buildDefinition(domain.ContextApplication, "copy")
		def.ValueConditional = &domain.ValueConditional{Type: domain.ValueConditionalCopyFrom, SourceField: "email"}
		created, err := repository.Create(ctx, def)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		updated, err := repository.Update(ctx, created.ID, domain.FieldPatch{RemoveValueConditional: true})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(updated.ValueConditional).To(gomega.BeNil())
	})

	ginkgo.It("reports missing definitions", func() {
		_, err := repository.GetByID(ctx, "missing")
		gomega.Expect(err).To(gomega.MatchError(usecases.ErrFieldDefinitionNotFound))

		_, err = repository.Update(ctx, "missing", domain.FieldPatch{})
		gomega.Expect(err).To(gomega.MatchError(usecases.ErrFieldDefinitionNotFound))

		gomega.Expect(repository.Delete(ctx, "missing")).To(gomega.MatchError(usecases.ErrFieldDefinitionNotFound))
	})

	ginkgo.It("deletes immediately", func() {
		created, err := repository.Create(ctx, buildDefinition(domain.ContextLoan, "loan_amount"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(repository.Delete(ctx, created.ID)).To(gomega.Succeed())

		defs, err := repository.FindAllByContext(ctx, domain.ContextLoan)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(defs).To(gomega.BeEmpty())
		gomega.Expect(events[len(events)-1].EventType()).To(gomega.Equal(domain.EventFieldDeleted))
	})
})

var _ = ginkgo.Describe("NewFieldDefinitionRepository", func() {
	ginkgo.It("fails without a publisher", func() {
		ctrl := gomock.NewController(ginkgo.GinkgoT())
		factory := mockpubsub.NewMockPublisherFactory(ctrl)
		factory.EXPECT().New(gomock.Any(), gomock.Any()).Return(nil, errors.New("no brokers"))

		orm, err := sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = persistence.NewFieldDefinitionRepository(factory, orm)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("no brokers")))
	})
})
