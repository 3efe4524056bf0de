package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const memoryBufferSize = 256

var _ PublisherFactory = (*MemoryPublisherFactory)(nil)

// MemoryPublisherFactory backs the local environment and tests. Messages
// are delivered in process without encoding.
type MemoryPublisherFactory struct {
	broker *MemoryBroker
}

func NewMemoryPublisherFactory() *MemoryPublisherFactory {
	return &MemoryPublisherFactory{broker: GetMemoryBroker()}
}

func (f *MemoryPublisherFactory) New(topic Topic, _ Prototype) (Publisher, error) {
	return &MemoryPublisher{broker: f.broker, topic: topic}, nil
}

type MemoryPublisher struct {
	broker *MemoryBroker
	topic  Topic
}

func (p *MemoryPublisher) Publish(_ context.Context, key Key, message Message) error {
	return p.broker.Publish(p.topic, key, message)
}

var _ ConsumerFactory = (*MemoryConsumerFactory)(nil)

type MemoryConsumerFactory struct {
	broker *MemoryBroker
	group  string
}

func NewMemoryConsumerFactory(group string) *MemoryConsumerFactory {
	return &MemoryConsumerFactory{broker: GetMemoryBroker(), group: group}
}

func (f *MemoryConsumerFactory) New() Consumer {
	return &MemoryConsumer{broker: f.broker, group: f.group}
}

type MemoryConsumer struct {
	broker *MemoryBroker
	group  string
}

func (c *MemoryConsumer) Consume(ctx context.Context, topic Topic, handler MessageHandler, _ Prototype) error {
	return c.broker.Subscribe(ctx, topic, c.group, handler)
}

type memoryMessage struct {
	key     Key
	message Message
}

// memoryGroup is one consumer group on one topic. Consumers of the same
// group compete for its messages, as they would on a Kafka partition set.
type memoryGroup struct {
	messages chan memoryMessage
	members  int
}

// MemoryBroker is process wide so publishers and consumers created by
// different factories meet.
type MemoryBroker struct {
	mu     sync.Mutex
	groups map[Topic]map[string]*memoryGroup
}

var (
	memoryBroker     *MemoryBroker
	memoryBrokerOnce sync.Once
)

func GetMemoryBroker() *MemoryBroker {
	memoryBrokerOnce.Do(func() {
		memoryBroker = NewMemoryBroker()
	})
	return memoryBroker
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{groups: make(map[Topic]map[string]*memoryGroup)}
}

// Publish fans the message out to every group subscribed to topic.
// Messages published while no group listens are dropped.
func (b *MemoryBroker) Publish(topic Topic, key Key, message Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, group := range b.groups[topic] {
		select {
		case group.messages <- memoryMessage{key: key, message: message}:
		default:
			return fmt.Errorf("memory topic %s: buffer of group %s is full", topic, name)
		}
	}
	return nil
}

// Subscribe delivers messages to handler until ctx is cancelled.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic Topic, groupName string, handler MessageHandler) error {
	group := b.join(topic, groupName)
	defer b.leave(topic, groupName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-group.messages:
			b.dispatch(ctx, topic, handler, msg)
		}
	}
}

func (b *MemoryBroker) dispatch(ctx context.Context, topic Topic, handler MessageHandler, msg memoryMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in message handler",
				slog.String("topic", string(topic)),
				slog.Any("panic", r))
		}
	}()

	if err := handler(ctx, msg.key, msg.message); err != nil {
		slog.Error("handling message",
			slog.String("topic", string(topic)),
			slog.String("key", string(msg.key)),
			slog.String("error", err.Error()))
	}
}

func (b *MemoryBroker) join(topic Topic, groupName string) *memoryGroup {
	b.mu.Lock()
	defer b.mu.Unlock()

	groups, ok := b.groups[topic]
	if !ok {
		groups = make(map[string]*memoryGroup)
		b.groups[topic] = groups
	}
	group, ok := groups[groupName]
	if !ok {
		group = &memoryGroup{messages: make(chan memoryMessage, memoryBufferSize)}
		groups[groupName] = group
	}
	group.members++
	return group
}

func (b *MemoryBroker) leave(topic Topic, groupName string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.groups[topic][groupName]
	if !ok {
		return
	}
	group.members--
	if group.members == 0 {
		delete(b.groups[topic], groupName)
	}
}

// Subscribers reports how many consumers listen on topic.
func (b *MemoryBroker) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, group := range b.groups[topic] {
		total += group.members
	}
	return total
}

func (b *MemoryBroker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = make(map[Topic]map[string]*memoryGroup)
}
