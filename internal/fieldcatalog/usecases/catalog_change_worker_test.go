package usecases_test

import (
	"context"
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/pubsub"
	mockusecases "loanportal-server/test/unit/doubles/fieldcatalog/usecases"
	mockasync "loanportal-server/test/unit/doubles/infra/async"
	mockpubsub "loanportal-server/test/unit/doubles/infra/pubsub"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("CatalogChangeWorker", func() {
	var (
		ctrl         *gomock.Controller
		mockFactory  *mockpubsub.MockConsumerFactory
		mockConsumer *mockpubsub.MockConsumer
		mockCache    *mockusecases.MockCatalogCache
		mockBroker   *mockasync.MockInternalBroker
		worker       *usecases.CatalogChangeWorker
		handlers     chan pubsub.MessageHandler
		handler      pubsub.MessageHandler
	)

	event := domain.FieldDefinitionEvent{
		Type:              string(domain.EventFieldUpdated),
		FieldDefinitionID: "f-1",
		Context:           string(domain.ContextLoan),
		FieldName:         "loan_amount",
		Version:           3,
	}

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockFactory = mockpubsub.NewMockConsumerFactory(ctrl)
		mockConsumer = mockpubsub.NewMockConsumer(ctrl)
		mockCache = mockusecases.NewMockCatalogCache(ctrl)
		mockBroker = mockasync.NewMockInternalBroker(ctrl)
		worker = usecases.NewCatalogChangeWorker(mockFactory, mockCache, mockBroker)
		handlers = make(chan pubsub.MessageHandler, 1)

		mockFactory.EXPECT().New().Return(mockConsumer)
		mockConsumer.EXPECT().
			Consume(gomock.Any(), pubsub.Topic(domain.FieldDefinitionEventsTopic), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ pubsub.Topic, h pubsub.MessageHandler, _ pubsub.Prototype) error {
				handlers <- h
				<-ctx.Done()
				return nil
			})
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	start := func() (context.CancelFunc, chan struct{}) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go worker.Run(ctx, func() { close(done) })
		gomega.Eventually(handlers).Should(gomega.Receive(&handler))
		return cancel, done
	}

	ginkgo.It("invalidates the context cache and forwards the event", func() {
		cancel, done := start()
		defer cancel()

		mockCache.EXPECT().Invalidate(gomock.Any(), domain.ContextLoan).Return(nil)
		mockBroker.EXPECT().
			Publish(gomock.Any(), usecases.CatalogChangesTopic, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ async.BrokerTopicName, msg async.BrokerMessage) error {
				gomega.Expect(msg.Event).To(gomega.Equal("field_updated"))
				gomega.Expect(msg.Value).To(gomega.Equal(event))
				return nil
			})

		gomega.Expect(handler(context.Background(), "loan", event)).To(gomega.Succeed())

		worker.Shutdown()
		gomega.Eventually(done).Should(gomega.BeClosed())
	})

	ginkgo.It("accepts a pointer to the event", func() {
		cancel, done := start()

		mockCache.EXPECT().Invalidate(gomock.Any(), domain.ContextLoan).Return(nil)
		mockBroker.EXPECT().Publish(gomock.Any(), usecases.CatalogChangesTopic, gomock.Any()).Return(nil)

		gomega.Expect(handler(context.Background(), "loan", &event)).To(gomega.Succeed())

		cancel()
		gomega.Eventually(done).Should(gomega.BeClosed())
	})

	ginkgo.It("rejects other messages", func() {
		cancel, done := start()

		gomega.Expect(handler(context.Background(), "loan", map[string]any{"type": "x"})).NotTo(gomega.Succeed())

		cancel()
		gomega.Eventually(done).Should(gomega.BeClosed())
	})

	ginkgo.It("does not forward an event whose cache could not be dropped", func() {
		cancel, done := start()

		mockCache.EXPECT().Invalidate(gomock.Any(), domain.ContextLoan).Return(errors.New("redis down"))

		gomega.Expect(handler(context.Background(), "loan", event)).To(gomega.MatchError(gomega.ContainSubstring("redis down")))

		cancel()
		gomega.Eventually(done).Should(gomega.BeClosed())
	})
})
