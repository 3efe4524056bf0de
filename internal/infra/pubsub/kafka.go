package pubsub

import (
	"context"
	"errors"
	"fmt"
	"loanportal-server/internal/shared_kernel/avro"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lovoo/goka"
)

const (
	maxRetries    int = 10
	retryInterval     = 5 * time.Second
)

// publisherKey identifies a publisher so repeated factory calls for the
// same topic share one emitter.
type publisherKey struct {
	brokers string
	topic   Topic
}

type publisherInstance struct {
	publisher *SimpleKafkaPublisher
	once      sync.Once
	err       error
}

var (
	publishersMap   = make(map[publisherKey]*publisherInstance)
	publishersMutex sync.Mutex
)

var _ Publisher = (*SimpleKafkaPublisher)(nil)

type SimpleKafkaPublisher struct {
	topic   Topic
	emitter *goka.Emitter
}

func NewKafkaPublisher(brokers []string, topic Topic, prototype Prototype, registry avro.SchemaRegistry) (*SimpleKafkaPublisher, error) {
	key := publisherKey{brokers: strings.Join(brokers, ","), topic: topic}

	publishersMutex.Lock()
	instance, exists := publishersMap[key]
	if !exists {
		instance = &publisherInstance{}
		publishersMap[key] = instance
	}
	publishersMutex.Unlock()

	instance.once.Do(func() {
		codec, err := newCodec(topic, prototype, registry)
		if err != nil {
			instance.err = fmt.Errorf("creating codec for %s: %w", topic, err)
			return
		}

		for try := 1; try <= maxRetries; try++ {
			slog.Debug("connecting kafka emitter",
				slog.String("brokers", key.brokers),
				slog.String("topic", string(topic)),
				slog.Int("try", try))

			emitter, err := goka.NewEmitter(brokers, goka.Stream(topic), codec)
			if err == nil {
				instance.publisher = &SimpleKafkaPublisher{topic: topic, emitter: emitter}
				return
			}
			slog.Warn("kafka emitter not ready", slog.String("error", err.Error()))
			time.Sleep(retryInterval)
		}

		instance.err = fmt.Errorf("connecting to kafka brokers %s after %d retries", key.brokers, maxRetries)
	})

	if instance.err != nil {
		return nil, instance.err
	}
	return instance.publisher, nil
}

func (p *SimpleKafkaPublisher) Publish(_ context.Context, key Key, message Message) error {
	if err := p.emitter.EmitSync(string(key), message); err != nil {
		slog.Error("emitting message",
			slog.String("topic", string(p.topic)),
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
		return fmt.Errorf("emitting to %s: %w", p.topic, err)
	}
	return nil
}

func (p *SimpleKafkaPublisher) Close() error {
	return p.emitter.Finish()
}

type consumerKey struct {
	brokers string
	group   string
}

var (
	consumersMap   = make(map[consumerKey]*SimpleKafkaConsumer)
	consumersMutex sync.Mutex
)

var _ Consumer = (*SimpleKafkaConsumer)(nil)

type SimpleKafkaConsumer struct {
	brokers  []string
	group    goka.Group
	registry avro.SchemaRegistry
}

// NewKafkaConsumer returns the shared consumer of a group. Creating it does
// not contact the brokers.
func NewKafkaConsumer(brokers []string, group string, registry avro.SchemaRegistry) *SimpleKafkaConsumer {
	key := consumerKey{brokers: strings.Join(brokers, ","), group: group}

	consumersMutex.Lock()
	defer consumersMutex.Unlock()
	if consumer, ok := consumersMap[key]; ok {
		return consumer
	}

	consumer := &SimpleKafkaConsumer{
		brokers:  brokers,
		group:    goka.Group(group),
		registry: registry,
	}
	consumersMap[key] = consumer
	return consumer
}

// Consume runs a goka processor for topic until ctx is cancelled. Handler
// errors are logged; the offset is committed anyway so one poisoned
// message does not stall the group.
func (c *SimpleKafkaConsumer) Consume(ctx context.Context, topic Topic, handler MessageHandler, prototype Prototype) error {
	codec, err := newCodec(topic, prototype, c.registry)
	if err != nil {
		return fmt.Errorf("creating codec for %s: %w", topic, err)
	}

	cb := func(gctx goka.Context, msg any) {
		key := Key(gctx.Key())
		if err := handler(gctx.Context(), key, msg); err != nil {
			slog.Error("handling message",
				slog.String("topic", string(topic)),
				slog.String("key", string(key)),
				slog.String("error", err.Error()))
		}
	}

	graph := goka.DefineGroup(
		goka.Group(fmt.Sprintf("%s-%s", c.group, topic)),
		goka.Input(goka.Stream(topic), codec, cb),
	)
	processor, err := goka.NewProcessor(c.brokers, graph)
	if err != nil {
		return fmt.Errorf("creating processor for %s: %w", topic, err)
	}

	slog.Info("kafka consumer started",
		slog.String("group", string(c.group)),
		slog.String("topic", string(topic)))

	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("running processor for %s: %w", topic, err)
	}
	return nil
}
