package pubsub

import (
	"loanportal-server/internal/shared_kernel/avro"

	"github.com/riferrei/srclient"
)

const EnvironmentLocal = "local"

type FactoryOptions struct {
	Environment       string
	KafkaBrokers      []string
	ConsumerGroup     string
	SchemaRegistryURL string
}

// Factory picks the broker: the in-process memory broker for the local
// environment, Kafka everywhere else.
type Factory struct {
	publisherFactory PublisherFactory
	consumerFactory  ConsumerFactory
}

func NewFactory(opts FactoryOptions) *Factory {
	if opts.Environment == EnvironmentLocal || len(opts.KafkaBrokers) == 0 {
		return &Factory{
			publisherFactory: NewMemoryPublisherFactory(),
			consumerFactory:  NewMemoryConsumerFactory(opts.ConsumerGroup),
		}
	}

	var registry avro.SchemaRegistry
	if opts.SchemaRegistryURL != "" {
		registry = srclient.CreateSchemaRegistryClient(opts.SchemaRegistryURL)
	}

	return &Factory{
		publisherFactory: NewKafkaPublisherFactory(opts.KafkaBrokers, registry),
		consumerFactory:  NewKafkaConsumerFactory(opts.KafkaBrokers, opts.ConsumerGroup, registry),
	}
}

func (f *Factory) GetPublisherFactory() PublisherFactory {
	return f.publisherFactory
}

func (f *Factory) GetConsumerFactory() ConsumerFactory {
	return f.consumerFactory
}
