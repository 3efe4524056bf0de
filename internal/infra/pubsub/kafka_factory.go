package pubsub

import (
	"fmt"
	"loanportal-server/internal/shared_kernel/avro"
)

var _ PublisherFactory = (*KafkaPublisherFactory)(nil)

type KafkaPublisherFactory struct {
	brokers  []string
	registry avro.SchemaRegistry
}

func NewKafkaPublisherFactory(brokers []string, registry avro.SchemaRegistry) *KafkaPublisherFactory {
	return &KafkaPublisherFactory{
		brokers:  brokers,
		registry: registry,
	}
}

func (f *KafkaPublisherFactory) New(topic Topic, prototype Prototype) (Publisher, error) {
	publisher, err := NewKafkaPublisher(f.brokers, topic, prototype, f.registry)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}
	return publisher, nil
}

var _ ConsumerFactory = (*KafkaConsumerFactory)(nil)

type KafkaConsumerFactory struct {
	brokers  []string
	group    string
	registry avro.SchemaRegistry
}

func NewKafkaConsumerFactory(brokers []string, group string, registry avro.SchemaRegistry) *KafkaConsumerFactory {
	return &KafkaConsumerFactory{
		brokers:  brokers,
		group:    group,
		registry: registry,
	}
}

func (f *KafkaConsumerFactory) New() Consumer {
	return NewKafkaConsumer(f.brokers, f.group, f.registry)
}
