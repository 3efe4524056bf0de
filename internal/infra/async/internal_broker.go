package async

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=internal_broker.go -destination=../../../test/unit/doubles/infra/async/internal_broker_mock.go -package=async -mock_names=InternalBroker=MockInternalBroker

const subscriptionBuffer = 16

type BrokerTopicName string

type BrokerMessage struct {
	Event string
	Value any
	Span  trace.Span
}

type InternalBroker interface {
	Subscribe(topic BrokerTopicName) (Subscription, error)
	Unsubscribe(topic BrokerTopicName, subscription Subscription) error
	Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error
	Stop()
}

var _ InternalBroker = (*LocalBroker)(nil)

var (
	ErrTopicNotFound       = errors.New("topic not found")
	ErrSubscriptorNotFound = errors.New("subscriptor not found")
	ErrBrokerStopped       = errors.New("broker stopped")
)

type Subscription struct {
	ID       string
	Receiver <-chan BrokerMessage
}

type subscriptor struct {
	id       string
	receiver chan BrokerMessage
}

// LocalBroker fans messages out to in-process subscribers. A subscriber
// that does not keep up loses messages instead of slowing the others.
type LocalBroker struct {
	mu           sync.Mutex
	subscriptors map[BrokerTopicName][]*subscriptor
	stopped      bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		subscriptors: make(map[BrokerTopicName][]*subscriptor),
	}
}

func (b *LocalBroker) Subscribe(topic BrokerTopicName) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return Subscription{}, ErrBrokerStopped
	}

	s := &subscriptor{
		id:       uuid.NewString(),
		receiver: make(chan BrokerMessage, subscriptionBuffer),
	}
	b.subscriptors[topic] = append(b.subscriptors[topic], s)
	return Subscription{ID: s.id, Receiver: s.receiver}, nil
}

// Unsubscribe closes the subscription's receiver.
func (b *LocalBroker) Unsubscribe(topic BrokerTopicName, subscription Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscriptors, ok := b.subscriptors[topic]
	if !ok {
		return ErrTopicNotFound
	}
	index := slices.IndexFunc(subscriptors, func(s *subscriptor) bool { return s.id == subscription.ID })
	if index < 0 {
		return ErrSubscriptorNotFound
	}

	close(subscriptors[index].receiver)
	b.subscriptors[topic] = slices.Delete(subscriptors, index, index+1)
	if len(b.subscriptors[topic]) == 0 {
		delete(b.subscriptors, topic)
	}
	return nil
}

// Publish never blocks. Publishing to a topic without subscribers is not
// an error.
func (b *LocalBroker) Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error {
	msg.Span = trace.SpanFromContext(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return ErrBrokerStopped
	}

	for _, s := range b.subscriptors[topic] {
		select {
		case s.receiver <- msg:
		default:
			slog.Warn("dropping message for slow subscriber",
				slog.String("topic", string(topic)),
				slog.String("subscription", s.id),
				slog.String("event", msg.Event))
		}
	}
	return nil
}

func (b *LocalBroker) Subscribers(topic BrokerTopicName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptors[topic])
}

func (b *LocalBroker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	for topic, subscriptors := range b.subscriptors {
		for _, s := range subscriptors {
			close(s.receiver)
		}
		delete(b.subscriptors, topic)
	}
}
