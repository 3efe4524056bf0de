package pubsub

import "context"

//go:generate mockgen -source=pubsub.go -destination=../../../test/unit/doubles/infra/pubsub/pubsub_mock.go -package=pubsub -mock_names=ConsumerFactory=MockConsumerFactory,Consumer=MockConsumer,PublisherFactory=MockPublisherFactory,Publisher=MockPublisher

type PublisherFactory interface {
	New(Topic, Prototype) (Publisher, error)
}

type Publisher interface {
	Publish(context.Context, Key, Message) error
}

type ConsumerFactory interface {
	New() Consumer
}

// Consumer delivers the messages of a topic to handler until ctx is
// cancelled. Messages are decoded into the type of prototype.
type Consumer interface {
	Consume(ctx context.Context, topic Topic, handler MessageHandler, prototype Prototype) error
}

type (
	Topic          string
	Key            string
	Message        any
	Prototype      any
	MessageHandler func(context.Context, Key, Message) error
)
