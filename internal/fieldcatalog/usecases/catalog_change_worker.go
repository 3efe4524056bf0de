package usecases

import (
	"context"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/pubsub"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CatalogChangesTopic is the in-process topic the change feed listens on.
const CatalogChangesTopic async.BrokerTopicName = "field_catalog_changes"

func NewCatalogChangeWorker(
	consumerFactory pubsub.ConsumerFactory,
	cache CatalogCache,
	broker async.InternalBroker,
) *CatalogChangeWorker {
	return &CatalogChangeWorker{
		consumerFactory: consumerFactory,
		cache:           cache,
		broker:          broker,
	}
}

var _ async.Worker = &CatalogChangeWorker{}

// CatalogChangeWorker follows the field_definitions topic. Every instance
// drops its cached catalog for the changed context and forwards the event
// to local listeners.
type CatalogChangeWorker struct {
	consumerFactory pubsub.ConsumerFactory
	cache           CatalogCache
	broker          async.InternalBroker

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (w *CatalogChangeWorker) Run(ctx context.Context, done func()) {
	slog.Debug("catalog change worker started")
	defer done()

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	consumer := w.consumerFactory.New()
	err := consumer.Consume(ctx,
		pubsub.Topic(domain.FieldDefinitionEventsTopic),
		w.handle,
		domain.FieldDefinitionEvent{},
	)
	if err != nil {
		slog.Error("consuming catalog changes", slog.String("error", err.Error()))
		return
	}
	slog.Info("catalog change worker stopped")
}

func (w *CatalogChangeWorker) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *CatalogChangeWorker) handle(ctx context.Context, key pubsub.Key, message pubsub.Message) error {
	event, ok := asFieldDefinitionEvent(message)
	if !ok {
		return fmt.Errorf("unexpected message %T on %s", message, domain.FieldDefinitionEventsTopic)
	}

	ctx, span := pubsub.StartConsumerSpan(ctx, "field_catalog.change", pubsub.TraceHeaders{
		TraceID:    event.TraceID,
		SpanID:     event.SpanID,
		TraceFlags: event.TraceFlags,
	})
	defer span.End()
	span.SetAttributes(
		attribute.String("field_catalog.context", event.Context),
		attribute.String("field_catalog.event", event.Type),
		attribute.String("field_definition.id", event.FieldDefinitionID),
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.cache.Invalidate(ctx, event.FieldContext()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalidating catalog cache")
		return fmt.Errorf("invalidating %s catalog: %w", event.Context, err)
	}

	if err := w.broker.Publish(ctx, CatalogChangesTopic, async.BrokerMessage{Event: event.Type, Value: event}); err != nil {
		slog.Warn("forwarding catalog change",
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
	}

	slog.Debug("catalog change applied",
		slog.String("context", event.Context),
		slog.String("event", event.Type),
		slog.String("field_definition_id", event.FieldDefinitionID))
	return nil
}

func asFieldDefinitionEvent(message pubsub.Message) (domain.FieldDefinitionEvent, bool) {
	switch event := message.(type) {
	case domain.FieldDefinitionEvent:
		return event, true
	case *domain.FieldDefinitionEvent:
		if event == nil {
			return domain.FieldDefinitionEvent{}, false
		}
		return *event, true
	default:
		return domain.FieldDefinitionEvent{}, false
	}
}
